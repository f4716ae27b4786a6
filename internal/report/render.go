package report

import (
	"fmt"
	"os"

	"github.com/banshee-data/cycle.report/internal/phase"
)

func renderHTMLFile(path string, lt *phase.LabeledTrace, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	return RenderHTML(f, lt, title)
}
