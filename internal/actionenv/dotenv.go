package actionenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const dotenvLoadErrorTemplateConstant = "unable to load environment file %s: %w"

// LoadEnvironmentFile loads KEY=VALUE pairs from path without overriding variables that are already set.
// A missing file is ignored unless required is true.
func LoadEnvironmentFile(path string, required bool) error {
	if len(path) == 0 {
		return nil
	}
	if _, statError := os.Stat(path); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf(dotenvLoadErrorTemplateConstant, path, statError)
	}
	if loadError := godotenv.Load(path); loadError != nil {
		return fmt.Errorf(dotenvLoadErrorTemplateConstant, path, loadError)
	}
	return nil
}
