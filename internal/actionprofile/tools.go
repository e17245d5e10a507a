package actionprofile

import "strings"

// family groups tool names that share argument shapes.
type family int

const (
	familyUnknown family = iota
	familyShell
	familyEdit
	familyDelete
	familyFileOps
	familyRead
	familyNetwork
	familyUI
	familyREPL
)

var toolFamilies = map[string]family{
	"run_shell_command": familyShell,
	"shell":             familyShell,
	"bash":              familyShell,
	"exec":              familyShell,
	"command":           familyShell,
	"run_command":       familyShell,
	"terminal":          familyShell,

	"edit":          familyEdit,
	"edit_file":     familyEdit,
	"replace":       familyEdit,
	"write_file":    familyEdit,
	"write":         familyEdit,
	"create_file":   familyEdit,
	"str_replace":   familyEdit,
	"notebook_edit": familyEdit,

	"delete":      familyDelete,
	"delete_file": familyDelete,
	"remove_file": familyDelete,

	"file_operations": familyFileOps,

	"read_file":           familyRead,
	"read_many_files":     familyRead,
	"list_directory":      familyRead,
	"ls":                  familyRead,
	"glob":                familyRead,
	"grep":                familyRead,
	"search_file_content": familyRead,
	"view":                familyRead,

	"web_fetch":         familyNetwork,
	"fetch":             familyNetwork,
	"http":              familyNetwork,
	"http_request":      familyNetwork,
	"web_search":        familyNetwork,
	"google_web_search": familyNetwork,
	"browser_navigate":  familyNetwork,
	"download":          familyNetwork,

	"python_repl":      familyREPL,
	"node_repl":        familyREPL,
	"repl":             familyREPL,
	"execute_code":     familyREPL,
	"run_code":         familyREPL,
	"code_interpreter": familyREPL,
}

// UIAction is the kind of input a UI-automation tool performs.
type UIAction string

const (
	UIClick  UIAction = "click"
	UIType   UIAction = "type"
	UIKey    UIAction = "key"
	UIScroll UIAction = "scroll"
	UIQuery  UIAction = "query"
)

var uiActions = map[string]UIAction{
	"click":        UIClick,
	"double_click": UIClick,
	"right_click":  UIClick,
	"type":         UIType,
	"type_text":    UIType,
	"fill":         UIType,
	"key":          UIKey,
	"press_key":    UIKey,
	"hotkey":       UIKey,
	"scroll":       UIScroll,
	"query":        UIQuery,
	"snapshot":     UIQuery,
	"screenshot":   UIQuery,
}

var uiPrefixes = []string{"ui_", "gui_", "browser_", "computer_"}

// UIActionFor maps a UI-automation tool name to its action kind.
// "ui_click", "browser_click" and "click" all map to UIClick.
func UIActionFor(toolName string) (UIAction, bool) {
	name := strings.ToLower(strings.TrimSpace(toolName))
	for _, p := range uiPrefixes {
		if strings.HasPrefix(name, p) {
			if a, ok := uiActions[strings.TrimPrefix(name, p)]; ok {
				return a, true
			}
		}
	}
	a, ok := uiActions[name]
	return a, ok
}

// IsUITool reports whether toolName is a UI or browser automation tool.
func IsUITool(toolName string) bool {
	if _, ok := UIActionFor(toolName); ok {
		return true
	}
	name := strings.ToLower(toolName)
	return strings.HasPrefix(name, "ui_") || strings.HasPrefix(name, "gui_") || strings.Contains(name, "browser")
}

func familyOf(toolName string) family {
	name := strings.ToLower(strings.TrimSpace(toolName))
	if f, ok := toolFamilies[name]; ok {
		return f
	}
	if IsUITool(name) {
		return familyUI
	}
	return familyUnknown
}
