package scaffold

import (
	"fmt"
	"os"
)

// CheckExisting checks if gridnote.yml already exists
// Returns an error if it does, nil otherwise
func CheckExisting() error {
	if _, err := os.Stat("gridnote.yml"); err == nil {
		return fmt.Errorf("project already initialized\n\nFound existing: gridnote.yml\n\nUse 'gridnote init --force' to reinitialize (this will overwrite existing configuration)")
	}

	return nil
}
