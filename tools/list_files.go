package tools

import (
	"encoding/json"
	"sort"

	"github.com/petasbytes/turnflow/internal/fsops"
)

type ListFilesInput struct {
	Path     string `json:"path,omitempty" jsonschema_description:"Optional relative directory (defaults to the workspace root)."`
	Page     int    `json:"page,omitempty" jsonschema_description:"1-based page number (default 1)."`
	PageSize int    `json:"page_size,omitempty" jsonschema_description:"Page size (default 200)."`
}

const defaultListFilesPageSize = 200

var ListFilesInputSchema = GenerateSchema[ListFilesInput]()

func ListFilesDefinition(fs *fsops.FS) ToolDefinition {
	return ToolDefinition{
		Name:        "list_files",
		Description: "List entry names of a directory within the workspace (non-recursive). Directories end with \"/\".",
		InputSchema: ListFilesInputSchema,
		Function: func(input json.RawMessage) (string, error) {
			return listFiles(fs, input)
		},
	}
}

// listFiles returns one sorted page of names as a JSON array. A page past the
// end is "[]".
func listFiles(fs *fsops.FS, input json.RawMessage) (string, error) {
	var in ListFilesInput
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return "", err
		}
	}
	page := max(in.Page, 1)
	size := in.PageSize
	if size <= 0 {
		size = defaultListFilesPageSize
	}

	names, err := fs.ListDir(in.Path)
	if err != nil {
		return "", err
	}
	sort.Strings(names)

	pages := len(names) / size
	if len(names)%size != 0 {
		pages++
	}
	if page > pages {
		return "[]", nil
	}
	start := (page - 1) * size
	end := start + min(size, len(names)-start)

	b, err := json.Marshal(names[start:end])
	if err != nil {
		return "", err
	}
	return string(b), nil
}
