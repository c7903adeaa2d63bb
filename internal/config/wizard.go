package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// siteMarkers are files whose presence suggests the current directory is
// already a site root.
var siteMarkers = []string{"index.html", "includes", "content"}

// detectSite reports whether the current directory looks like a site root.
func detectSite() bool {
	for _, marker := range siteMarkers {
		if _, err := os.Stat(marker); err == nil {
			return true
		}
	}
	return false
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to stitch! Let's configure your site.")
	fmt.Println()

	defaultSite := "."
	if !detectSite() {
		fmt.Println("No index.html found here; point stitch at your site sources.")
		fmt.Println()
		defaultSite = "site"
	}

	// 1. Site sources.
	sitePrompt := promptui.Prompt{
		Label:   "Site source directory",
		Default: defaultSite,
	}
	siteDir, err := sitePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site dir: %w", err)
	}

	// 2. Build output.
	outPrompt := promptui.Prompt{
		Label:   "Build output directory",
		Default: "dist",
	}
	outDir, err := outPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("out dir: %w", err)
	}

	// 3. Dev server port.
	portPrompt := promptui.Prompt{
		Label:   "Dev server port",
		Default: strconv.Itoa(DefaultPort),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	// 4. Diagram rendering.
	modePrompt := promptui.Select{
		Label: "How should Mermaid diagrams render",
		Items: []string{
			"client - load Mermaid in the browser",
			"cli    - pre-render SVG with mmdc",
			"none   - leave diagram source as text",
		},
	}
	modeIdx, _, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("diagram mode: %w", err)
	}
	modes := []DiagramMode{DiagramClient, DiagramCLI, DiagramNone}

	// 5. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Extra asset exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}

	cfg := DefaultConfig()
	cfg.SiteDir = siteDir
	cfg.OutDir = outDir
	cfg.Port = port
	cfg.Origin = fmt.Sprintf("http://localhost:%d", port)
	cfg.Diagram.Mode = modes[modeIdx]
	if excludeStr != "" {
		cfg.Exclude = append(cfg.Exclude, splitAndTrim(excludeStr)...)
	}

	if cfg.Diagram.Mode == DiagramCLI {
		cfg.Diagram.Command = "mmdc"
		fmt.Println("\nNote: cli mode needs @mermaid-js/mermaid-cli (mmdc) on your PATH.")
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
