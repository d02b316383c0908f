package scaffold

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*
var templatesFS embed.FS

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize creates the gridnote project configuration
// If force is true, it will remove an existing gridnote.yml first
func Initialize(force bool, project string) error {
	// Handle --force flag
	if force {
		if err := handleForce(); err != nil {
			return err
		}
	}

	// Get template files
	files, err := getTemplateFiles(project)
	if err != nil {
		return err
	}

	// Write files
	if err := writeFiles(files); err != nil {
		return err
	}

	// Validate created files
	if err := validateCreatedFiles(); err != nil {
		return err
	}

	return nil
}

// handleForce removes existing files if --force was specified
func handleForce() error {
	if _, err := os.Stat("gridnote.yml"); err == nil {
		fmt.Println("⚠️  Removing existing gridnote.yml...")
		if err := os.Remove("gridnote.yml"); err != nil {
			return fmt.Errorf("failed to remove gridnote.yml: %w", err)
		}
	}

	return nil
}

// getTemplateFiles reads and processes all template files
func getTemplateFiles(project string) ([]FileInfo, error) {
	files := []FileInfo{}

	// gridnote.yml
	gridnoteYml, err := templatesFS.ReadFile("templates/gridnote.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read gridnote.yml template: %w", err)
	}
	content := []byte(fmt.Sprintf(string(gridnoteYml), project))
	files = append(files, FileInfo{
		Path:        "gridnote.yml",
		Content:     content,
		Permissions: 0644,
	})

	return files, nil
}

// writeFiles writes all template files to disk
func writeFiles(files []FileInfo) error {
	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return nil
}

// validateCreatedFiles validates that created files are correct
func validateCreatedFiles() error {
	// Validate gridnote.yml is valid YAML
	content, err := os.ReadFile("gridnote.yml")
	if err != nil {
		return fmt.Errorf("failed to read created gridnote.yml: %w", err)
	}

	var yamlData interface{}
	if err := yaml.Unmarshal(content, &yamlData); err != nil {
		return fmt.Errorf("created gridnote.yml is not valid YAML: %w", err)
	}

	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess() {
	fmt.Println("\n✅ Successfully initialized gridnote project!")
	fmt.Println("\nCreated:")
	fmt.Println("  ✓ gridnote.yml")
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Make sure Redis is reachable at the configured address")
	fmt.Println("  2. Run 'gridnote create --name \"My sheet\"' to create a spreadsheet")
	fmt.Println("  3. Run 'gridnote list' to see your sheets")
}
