package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	mlerror "github.com/msto63/mlang/foundation/core/error"
)

const stdinName = "<stdin>"

// readSource returns the program named by args, or stdin for no argument or "-"
func readSource(cmd *cobra.Command, args []string) (path, source string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return stdinName, "", mlerror.Wrap(err, "failed to read stdin").
				WithCode(mlerror.CodeIOError)
		}
		return stdinName, string(data), nil
	}
	return readFile(args[0])
}

func readFile(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := mlerror.CodeIOError
		if os.IsNotExist(err) {
			code = mlerror.CodeNotFound
		}
		return path, "", mlerror.Wrap(err, "failed to read source").
			WithCode(code).
			WithDetail("path", path)
	}
	return path, string(data), nil
}
