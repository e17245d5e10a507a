// Package actionprofile turns raw tool calls into ActionProfiles.
//
// The builder is pure: it resolves paths lexically against the configured
// target directory and home, and never stats or reads the filesystem.
// Anything it cannot parse with confidence is reported as an unknown
// operation at low confidence instead of being guessed.
package actionprofile

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/ladder/internal/model"
)

const maxSummaryLen = 200

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// Build derives the ActionProfile for call under caps.
func Build(call model.ToolCall, caps model.Capabilities) model.ActionProfile {
	a := newAnalysis(newResolver(caps))
	detail := ""

	switch {
	case len(call.Args) == 0:
		a.unknown()
		detail = "no arguments"
	default:
		switch familyOf(call.Name) {
		case familyShell:
			detail = a.shellTool(call.Args)
		case familyEdit:
			detail = a.editTool(call.Name, call.Args)
		case familyDelete:
			detail = a.deleteTool(call.Name, call.Args)
		case familyFileOps:
			detail = a.fileOpsTool(call.Args)
		case familyRead:
			detail = a.readTool(call.Name, call.Args)
		case familyNetwork:
			detail = a.networkTool(call.Name, call.Args)
		case familyUI:
			detail = a.uiTool(call.Name, call.Args)
		case familyREPL:
			a.roots = append(a.roots, strings.ToLower(call.Name))
			a.ops.Add(model.OpProcess)
			a.unknown()
			detail = "inline code"
		default:
			a.roots = append(a.roots, strings.ToLower(call.Name))
			a.unknown()
			detail = "unrecognised tool"
		}
	}

	if len(a.ops) == 0 {
		a.unknown()
	}

	return a.profile(call.Name, caps, detail)
}

// BuildFromRaw decodes raw JSON arguments first. Arguments that needed
// repair cap confidence at medium; arguments that cannot be decoded at all
// produce an unknown, low-confidence profile.
func BuildFromRaw(toolName, raw string, caps model.Capabilities) model.ActionProfile {
	args, repaired, err := DecodeArgs(raw)
	if err != nil {
		a := newAnalysis(newResolver(caps))
		a.roots = append(a.roots, strings.ToLower(toolName))
		a.unknown()
		return a.profile(toolName, caps, "undecodable arguments")
	}
	p := Build(model.ToolCall{Name: toolName, Args: args}, caps)
	if repaired {
		p.ParseConfidence = model.MinConfidence(p.ParseConfidence, model.ConfidenceMedium)
	}
	return p
}

func newResolver(caps model.Capabilities) resolver {
	if caps == nil {
		return resolver{}
	}
	r := resolver{cwd: caps.TargetDir(), home: caps.HomeDir()}
	if ws := caps.Workspace(); ws != nil {
		r.roots = append(r.roots, ws.Roots()...)
	}
	if r.cwd != "" && !containsString(r.roots, r.cwd) {
		r.roots = append(r.roots, r.cwd)
	}
	return r
}

func (a *analysis) profile(toolName string, caps model.Capabilities, detail string) model.ActionProfile {
	p := model.ActionProfile{
		ToolName:                 toolName,
		Operations:               a.ops.Sorted(),
		Roots:                    a.roots,
		TouchedPaths:             a.paths,
		URLs:                     a.urls,
		UsesPrivilege:            a.privileged,
		HasUnboundedScopeSignals: a.unbounded,
		ParseConfidence:          a.confidence,
		Provenance:               []model.Provenance{model.ProvUnknown},
		RawSummary:               summarize(toolName, detail),
	}
	if p.Roots == nil {
		p.Roots = []string{}
	}
	if p.TouchedPaths == nil {
		p.TouchedPaths = []string{}
	}

	var ws model.WorkspaceContext
	if caps != nil {
		ws = caps.Workspace()
	}
	for _, path := range p.TouchedPaths {
		if ws == nil || !ws.IsPathWithinWorkspace(path) {
			p.OutsideWorkspace = true
			break
		}
	}
	return p
}

func summarize(toolName, detail string) string {
	detail = strings.Join(strings.Fields(detail), " ")
	s := toolName
	if detail != "" {
		s = fmt.Sprintf("%s: %s", toolName, detail)
	}
	if utf8.RuneCountInString(s) > maxSummaryLen {
		r := []rune(s)
		s = string(r[:maxSummaryLen-3]) + "..."
	}
	return s
}

// shellTool handles run_shell_command and friends.
func (a *analysis) shellTool(args map[string]any) string {
	cmd := stringArg(args, "command", "cmd", "script", "input")
	if extra := stringsArg(args, "args", "argv"); len(extra) > 0 {
		quoted := make([]string, len(extra))
		for i, e := range extra {
			quoted[i] = shellQuote(e)
		}
		cmd = strings.TrimSpace(cmd + " " + strings.Join(quoted, " "))
	}
	if dir := stringArg(args, "directory", "dir", "cwd", "working_dir", "workdir"); dir != "" {
		if abs, ok := a.res.resolve(dir); ok {
			a.res.cwd = abs
		} else {
			a.lower(model.ConfidenceMedium)
		}
	}
	if strings.TrimSpace(cmd) == "" {
		a.unknown()
		return "empty command"
	}
	a.analyze(cmd)
	return cmd
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>(){}*?") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

var pathKeys = []string{"file_path", "path", "absolute_path", "filename", "target_file", "notebook_path", "file"}

func (a *analysis) editTool(name string, args map[string]any) string {
	a.roots = append(a.roots, strings.ToLower(name))
	a.ops.Add(model.OpWrite)
	path := stringArg(args, pathKeys...)
	if path == "" {
		a.unknown()
		return "no target path"
	}
	a.touch(path)
	return path
}

func (a *analysis) deleteTool(name string, args map[string]any) string {
	a.roots = append(a.roots, strings.ToLower(name))
	a.ops.Add(model.OpDelete)
	paths := stringsArg(args, "paths", "file_path", "path", "target", "absolute_path")
	if len(paths) == 0 {
		a.unknown()
		return "no target path"
	}
	recursive := boolArg(args, "recursive", "recurse", "force_recursive")
	for _, p := range paths {
		abs, _ := a.touch(p)
		if recursive || strings.ContainsRune(p, '*') {
			a.checkScope(p, abs)
		}
	}
	return strings.Join(paths, " ")
}

func (a *analysis) fileOpsTool(args map[string]any) string {
	op := strings.ToLower(strings.TrimSpace(stringArg(args, "operation", "op", "action")))
	a.roots = append(a.roots, "file_operations")
	if op == "" {
		a.unknown()
		return "no operation"
	}
	a.roots = append(a.roots, op)

	paths := stringsArg(args, "paths", "path", "file_path", "source", "src")
	dest := stringArg(args, "destination", "dest", "new_path", "target", "to")
	recursive := boolArg(args, "recursive", "recurse")

	switch op {
	case "read", "list", "ls", "stat", "exists", "search", "info":
		a.ops.Add(model.OpRead)
	case "write", "create", "append", "mkdir", "touch", "chmod", "edit":
		a.ops.Add(model.OpWrite)
	case "delete", "remove", "rm", "rmdir":
		a.ops.Add(model.OpDelete)
	case "move", "rename", "mv":
		a.ops.Add(model.OpWrite, model.OpDelete)
	case "copy", "cp":
		a.ops.Add(model.OpRead, model.OpWrite)
	default:
		a.unknown()
		return op
	}

	if len(paths) == 0 && op != "list" && op != "ls" {
		a.unknown()
		return op + " without path"
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}

	destructive := a.ops[model.OpDelete]
	for _, p := range paths {
		abs, _ := a.touch(p)
		if destructive && (recursive || strings.ContainsRune(p, '*')) {
			a.checkScope(p, abs)
		}
		if op == "chmod" && recursive {
			a.checkScope(p, abs)
		}
	}
	if dest != "" && (op == "move" || op == "rename" || op == "mv" || op == "copy" || op == "cp") {
		a.touch(dest)
	}

	detail := op + " " + strings.Join(paths, " ")
	if dest != "" {
		detail += " -> " + dest
	}
	if recursive {
		detail += " (recursive)"
	}
	return detail
}

func (a *analysis) readTool(name string, args map[string]any) string {
	a.roots = append(a.roots, strings.ToLower(name))
	a.ops.Add(model.OpRead)
	paths := stringsArg(args, "paths", "file_path", "path", "absolute_path", "dir_path", "directory", "file")
	if len(paths) == 0 {
		if a.res.cwd == "" {
			a.lower(model.ConfidenceMedium)
			return stringArg(args, "pattern", "query")
		}
		paths = []string{a.res.cwd}
	}
	for _, p := range paths {
		a.touch(p)
	}
	return strings.Join(paths, " ")
}

func (a *analysis) networkTool(name string, args map[string]any) string {
	a.roots = append(a.roots, strings.ToLower(name))
	a.ops.Add(model.OpNetwork)
	for _, u := range stringsArg(args, "urls", "url", "uri", "href", "endpoint") {
		if n := normalizeURL(u); n != "" {
			a.addURL(n)
		} else {
			a.addURL(u)
		}
	}
	if prompt := stringArg(args, "prompt", "query", "body"); prompt != "" {
		for _, u := range urlPattern.FindAllString(prompt, -1) {
			a.addURL(u)
		}
	}
	if out := stringArg(args, "output", "output_path", "save_to", "destination", "file_path"); out != "" {
		a.ops.Add(model.OpWrite)
		a.touch(out)
	}
	if len(a.urls) > 0 {
		return strings.Join(a.urls, " ")
	}
	return stringArg(args, "query", "prompt")
}

func (a *analysis) uiTool(name string, args map[string]any) string {
	a.ops.Add(model.OpUI)
	a.roots = append(a.roots, "ui")
	action, ok := UIActionFor(name)
	if ok {
		a.roots = append(a.roots, string(action))
	} else {
		a.roots = append(a.roots, strings.ToLower(name))
		a.lower(model.ConfidenceMedium)
	}
	if u := stringArg(args, "url"); u != "" {
		a.ops.Add(model.OpNetwork)
		if n := normalizeURL(u); n != "" {
			a.addURL(n)
		}
	}
	detail := string(action)
	if !ok {
		detail = strings.ToLower(name)
	}
	if sel := stringArg(args, "selector", "target", "element", "ref"); sel != "" {
		detail += " " + sel
	}
	if text := stringArg(args, "text", "value", "key", "keys"); text != "" {
		detail += fmt.Sprintf(" %q", text)
	}
	return detail
}
