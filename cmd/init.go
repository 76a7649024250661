package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rana718/riskgen/internal/config"
	"github.com/Rana718/riskgen/internal/utils"
	"github.com/Rana718/riskgen/template"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a riskgen project",
	Long:  `Write riskgen.config.json and catalog.yaml with the default generation settings and value sets.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		input := utils.NewInputUtils(cmd.InOrStdin(), cmd.OutOrStdout())
		return initializeProject(".", force, input)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration without asking")
}

func initializeProject(dir string, force bool, input *utils.InputUtils) error {
	if config.IsInitialized(dir) {
		if !input.AskConfirmation(fmt.Sprintf("%s already exists. Overwrite it?", config.FileName), force) {
			color.Yellow("Initialization cancelled")
			return nil
		}
	}

	tmpl := template.NewProjectTemplate()

	configContent, err := tmpl.GetRiskgenConfig()
	if err != nil {
		return err
	}
	catalogContent, err := tmpl.GetCatalog()
	if err != nil {
		return err
	}

	for _, d := range tmpl.GetDirectoryStructure() {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	files := []struct {
		name    string
		content string
	}{
		{config.FileName, configContent},
		{template.CatalogFile, catalogContent},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), []byte(f.content), 0644); err != nil {
			return fmt.Errorf("failed to create file %s: %w", f.name, err)
		}
	}

	if err := handleEnvFile(filepath.Join(dir, ".env"), tmpl.GetEnvTemplate()); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	color.Green("✅ Successfully initialized riskgen project")
	fmt.Println()
	fmt.Println("📝 Files created:")
	for _, f := range files {
		fmt.Printf("   %s\n", f.name)
	}
	fmt.Println()
	fmt.Printf("🚀 Next steps:\n")
	fmt.Printf("   riskgen generate               # Write %d loans to %s/\n", tmpl.Config.Rows, tmpl.Config.OutputDir)
	fmt.Printf("   riskgen check %-16s # Verify the exported tables\n", tmpl.Config.OutputDir)

	return nil
}

// handleEnvFile creates path with the env template, or appends the template
// when the file exists without any riskgen variables.
func handleEnvFile(path, defaultEnvContent string) error {
	existingContent, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(path, []byte(defaultEnvContent), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	if strings.Contains(existingStr, "RISKGEN_") {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}

	existingStr += "\n# Added by riskgen\n" + defaultEnvContent

	return os.WriteFile(path, []byte(existingStr), 0644)
}
