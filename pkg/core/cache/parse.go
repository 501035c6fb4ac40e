package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"

	"github.com/msto63/mlang/foundation/lang"
	mlast "github.com/msto63/mlang/foundation/lang/ast"
)

// outcome keeps failed parses too, so an unchanged broken program is not
// parsed again either
type outcome struct {
	result *lang.Result
	err    error
}

// ParseCache memoizes engine parses by the SHA-256 of the source
type ParseCache struct {
	engine  *lang.Engine
	entries *Cache[outcome]
}

// NewParseCache creates a parse cache in front of engine
func NewParseCache(engine *lang.Engine, cfg Config) *ParseCache {
	return &ParseCache{
		engine:  engine,
		entries: New[outcome](cfg),
	}
}

// Key returns the cache key for source
func Key(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Parse returns the outcome for source, parsing it only on a miss. Every
// call gets its own copy of the tree and token slice; the cached original
// never leaves the cache.
func (p *ParseCache) Parse(source string) (*lang.Result, error) {
	key := Key(source)
	if o, ok := p.entries.Get(key); ok {
		return cloneResult(o.result), o.err
	}

	result, err := p.engine.Parse(source)
	p.entries.Set(key, outcome{result: result, err: err})
	return cloneResult(result), err
}

func cloneResult(r *lang.Result) *lang.Result {
	if r == nil {
		return nil
	}
	c := *r
	c.Program = mlast.CloneBlock(r.Program)
	c.Tokens = slices.Clone(r.Tokens)
	return &c
}

// Engine returns the engine behind the cache
func (p *ParseCache) Engine() *lang.Engine {
	return p.engine
}

// Stats returns hit and miss counts
func (p *ParseCache) Stats() (hits, misses int64, hitRate float64) {
	return p.entries.Stats()
}

// Len returns the number of cached outcomes
func (p *ParseCache) Len() int {
	return p.entries.Size()
}
