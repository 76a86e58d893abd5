package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
)

var sourceCodeExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".java": true,
	".c": true, ".h": true, ".cpp": true, ".rs": true, ".rb": true,
	".sh": true, ".yaml": true, ".yml": true, ".json": true, ".toml": true,
}

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch {
	case ext == ".pdf":
		return commonModels.PDF
	case ext == ".docx" || ext == ".odt" || ext == ".rtf":
		return commonModels.DOCX
	case ext == ".md" || ext == ".markdown":
		return commonModels.Markdown
	case ext == ".txt":
		return commonModels.Text
	case sourceCodeExtensions[ext]:
		return commonModels.SourceCode
	default:
		return commonModels.ERR
	}
}

func extractText(path string, contentType commonModels.DocType) (string, error) {
	switch contentType {
	case commonModels.PDF:
		return extractPDF(path)
	case commonModels.DOCX:
		return extractWithCat(path)
	case commonModels.Markdown, commonModels.Text, commonModels.SourceCode:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", commonModels.ErrUnsupportedFormat, filepath.Ext(path))
	}
}
