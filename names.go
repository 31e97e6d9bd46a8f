package release

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/mod/module"
)

var invalidFilenameChars = []string{
	"<",
	">",
	":",
	" ",
	"/",
	"\\",
	"|",
	"?",
	"*",
}

func fixFilename(name string) string {
	for _, i := range invalidFilenameChars {
		name = strings.ReplaceAll(name, i, "_")
	}

	return name
}

// checkArchivePath rejects entry names that would not extract on every
// platform, such as reserved Windows device names. name must not end in a slash.
func checkArchivePath(name string) error {
	if err := module.CheckFilePath(name); err != nil {
		return errors.Wrapf(err, "archive entry '%v' is not portable", name)
	}
	return nil
}
