package actionprofile

import (
	"strings"

	"github.com/ppiankov/ladder/internal/model"
)

// maxDepth bounds recursion into nested command strings (sudo sh -c '...').
const maxDepth = 3

// analysis accumulates the effects of one tool call. Shell lines feed it
// segment by segment; file and network tools feed it directly.
type analysis struct {
	ops        model.OperationSet
	roots      []string
	paths      []string
	urls       []string
	privileged bool
	unbounded  bool
	confidence model.ParseConfidence
	res        resolver
	depth      int
}

func newAnalysis(res resolver) *analysis {
	return &analysis{
		ops:        model.OperationSet{},
		confidence: model.ConfidenceHigh,
		res:        res,
	}
}

func (a *analysis) lower(c model.ParseConfidence) {
	a.confidence = model.MinConfidence(a.confidence, c)
}

// unknown marks the line as something the parser cannot vouch for.
func (a *analysis) unknown() {
	a.ops.Add(model.OpUnknown)
	a.lower(model.ConfidenceLow)
}

// touch records raw as an affected path. Paths that cannot be anchored
// (unexpanded variables, relative paths without a cwd) lower confidence.
func (a *analysis) touch(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return "", false
	}
	expanded := expandHome(raw, a.res.home)
	if strings.ContainsAny(expanded, "$`") {
		a.lower(model.ConfidenceMedium)
		return "", false
	}
	abs, ok := a.res.resolve(raw)
	if !ok {
		a.lower(model.ConfidenceMedium)
		return "", false
	}
	for _, p := range a.paths {
		if p == abs {
			return abs, true
		}
	}
	a.paths = append(a.paths, abs)
	return abs, true
}

// checkScope flags raw when a destructive operation on it has no boundary.
func (a *analysis) checkScope(raw, abs string) {
	if a.res.isUnboundedTarget(raw, abs) {
		a.unbounded = true
	}
}

func (a *analysis) addURL(u string) {
	for _, existing := range a.urls {
		if existing == u {
			return
		}
	}
	a.urls = append(a.urls, u)
}

// analyze processes a full command line.
func (a *analysis) analyze(cmd string) {
	if a.depth > maxDepth {
		a.unknown()
		return
	}
	split := splitCommand(cmd)
	if !split.balanced || split.substitution || split.heredoc {
		a.unknown()
	}
	if len(split.segments) == 0 {
		a.unknown()
		return
	}
	for _, seg := range split.segments {
		a.segment(seg)
	}
}

// nested analyzes a command string embedded in another command.
// Directory changes inside it do not leak out.
func (a *analysis) nested(cmd string) {
	a.depth++
	saved := a.res.cwd
	a.analyze(cmd)
	a.res.cwd = saved
	a.depth--
	a.lower(model.ConfidenceMedium)
}

func (a *analysis) segment(seg segment) {
	toks := tokenize(seg.text)
	var words []string
	for i := 0; i < len(toks); i++ {
		if toks[i].redirect {
			op, target := toks[i].text, ""
			if i+1 < len(toks) && !toks[i+1].redirect {
				target = toks[i+1].text
				i++
			}
			a.redirect(op, target)
			continue
		}
		words = append(words, toks[i].text)
	}
	for len(words) > 0 && isAssignment(words[0]) {
		words = words[1:]
	}
	if len(words) == 0 {
		return
	}
	a.command(words, seg.piped)
}

func (a *analysis) redirect(op, target string) {
	switch {
	case strings.Contains(op, "<<<"):
		return
	case strings.Contains(op, "<<"):
		a.lower(model.ConfidenceLow)
		return
	}
	if target == "" {
		a.lower(model.ConfidenceLow)
		return
	}
	if strings.HasSuffix(op, "&") || strings.HasPrefix(target, "&") {
		if target == "-" || isFD(strings.TrimPrefix(target, "&")) {
			return
		}
	}
	if strings.Contains(op, ">") {
		if isPseudoPath(target) {
			return
		}
		if isDevicePath(target) {
			a.ops.Add(model.OpDevice)
			a.touch(target)
			return
		}
		a.ops.Add(model.OpWrite)
		a.touch(target)
		return
	}
	a.ops.Add(model.OpRead)
	a.touch(target)
}

var sudoValueFlags = []string{"-u", "-g", "-h", "-p", "-C", "-U", "-r", "-t", "-D", "--user", "--group", "--host", "--prompt"}

var wrapperValueFlags = map[string][]string{
	"env":     {"-u", "-C", "-S", "--unset", "--chdir"},
	"nice":    {"-n", "--adjustment"},
	"ionice":  {"-c", "-n", "-p"},
	"stdbuf":  {"-i", "-o", "-e"},
	"timeout": {"-s", "-k", "--signal", "--kill-after"},
	"time":    {"-f", "-o", "--format", "--output"},
}

var wrappers = map[string]bool{
	"env": true, "nohup": true, "time": true, "nice": true, "ionice": true, "command": true,
	"builtin": true, "exec": true, "stdbuf": true, "timeout": true, "caffeinate": true,
	"chronic": true, "unbuffer": true,
}

var xargsValueFlags = []string{"-n", "-I", "-i", "-P", "-L", "-l", "-d", "-E", "-s", "-a", "--max-args", "--max-procs", "--delimiter", "--arg-file"}

// command dispatches one simple command (name plus arguments).
func (a *analysis) command(words []string, piped bool) {
	if strings.ContainsAny(words[0], "$`(){}") {
		a.unknown()
		return
	}
	name := commandName(words[0])
	args := words[1:]
	a.roots = append(a.roots, name)

	switch {
	case name == "sudo" || name == "doas":
		a.privileged = true
		a.ops.Add(model.OpPrivileged)
		rest := skipLeadingFlags(args, sudoValueFlags)
		for len(rest) > 0 && isAssignment(rest[0]) {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			a.ops.Add(model.OpProcess)
			return
		}
		a.command(rest, piped)
	case name == "su":
		a.privileged = true
		a.ops.Add(model.OpPrivileged)
		for i, arg := range args {
			if (arg == "-c" || arg == "--command") && i+1 < len(args) {
				a.nested(args[i+1])
				return
			}
		}
		a.ops.Add(model.OpProcess)
	case name == "command" && hasShortFlag(args, 'v', ""):
		a.ops.Add(model.OpRead)
	case wrappers[name]:
		rest := skipLeadingFlags(args, wrapperValueFlags[name])
		for len(rest) > 0 && isAssignment(rest[0]) {
			rest = rest[1:]
		}
		if name == "timeout" && len(rest) > 0 {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			if name == "env" {
				a.ops.Add(model.OpRead)
			} else {
				a.ops.Add(model.OpProcess)
			}
			return
		}
		a.command(rest, piped)
	case name == "xargs":
		a.xargs(args)
	case shellNames[name]:
		a.shell(args, piped)
	case interpreterNames[name]:
		a.interpreter(name, args, piped)
	case awkNames[name]:
		a.awk(args)
	case name == "eval" || name == "source" || name == ".":
		a.unknown()
	case name == "cd" || name == "pushd":
		a.ops.Add(model.OpRead)
		target := "~"
		if pos := positionals(args, nil); len(pos) > 0 {
			target = pos[0]
		}
		if abs, ok := a.res.resolve(target); ok && !strings.ContainsAny(target, "$`") {
			a.res.cwd = abs
		} else {
			a.res.cwd = ""
			a.lower(model.ConfidenceMedium)
		}
	case name == "popd":
		a.ops.Add(model.OpRead)
		a.res.cwd = ""
		a.lower(model.ConfidenceMedium)
	case name == "rm":
		a.rm(args)
	case name == "find":
		a.find(args)
	case name == "sed":
		a.sed(args)
	case name == "curl":
		a.curl(args)
	case name == "wget":
		a.wget(args)
	case name == "tar":
		a.tar(args)
	case name == "chmod" || name == "chown" || name == "chgrp":
		a.perm(args)
	case name == "rsync":
		a.rsync(args)
	case name == "scp":
		a.scp(args)
	case name == "ssh":
		a.ssh(args)
	case name == "dd":
		a.dd(args)
	case name == "git":
		a.git(args)
	case strings.HasPrefix(name, "mkfs"):
		a.simple(simpleCommands["mkfs"], args)
	default:
		if spec, ok := subcommandTools[name]; ok {
			a.subcommand(spec, args)
			return
		}
		if spec, ok := simpleCommands[name]; ok {
			a.simple(spec, args)
			return
		}
		a.ops.Add(model.OpProcess)
		a.lower(model.ConfidenceMedium)
	}
}

func (a *analysis) simple(spec commandSpec, args []string) {
	a.ops.Add(spec.ops...)
	if !spec.pathArgs {
		return
	}
	deletes := false
	for _, op := range spec.ops {
		if op == model.OpDelete {
			deletes = true
		}
	}
	pos := positionals(args, spec.valueFlags)
	if len(pos) <= spec.skip {
		return
	}
	for _, p := range pos[spec.skip:] {
		abs, _ := a.touch(p)
		if deletes && (hasShortFlag(args, 'r', "--recursive") || strings.ContainsRune(p, '*')) {
			a.checkScope(p, abs)
		}
	}
}

func (a *analysis) subcommand(spec subcommandSpec, args []string) {
	pos := positionals(args, spec.valueFlags)
	if len(pos) == 0 {
		a.ops.Add(spec.fallback...)
		return
	}
	sub := strings.ToLower(pos[0])
	a.roots = append(a.roots, sub)
	ops, ok := spec.subs[sub]
	if !ok {
		a.ops.Add(spec.fallback...)
		a.lower(model.ConfidenceMedium)
		return
	}
	a.ops.Add(ops...)
}

func (a *analysis) shell(args []string, piped bool) {
	a.ops.Add(model.OpProcess)
	if piped {
		a.unknown()
		return
	}
	for i, arg := range args {
		if arg == "-c" || (len(arg) > 1 && arg[0] == '-' && arg[1] != '-' && strings.ContainsRune(arg, 'c')) {
			if i+1 < len(args) {
				a.nested(args[i+1])
				return
			}
			a.unknown()
			return
		}
	}
	if pos := positionals(args, []string{"-o", "+o", "-O"}); len(pos) > 0 {
		a.ops.Add(model.OpRead)
		a.touch(pos[0])
		a.lower(model.ConfidenceMedium)
		return
	}
	a.unknown()
}

// xargs runs its command on targets read from stdin. A delete whose targets
// cannot be seen is never bounded.
func (a *analysis) xargs(args []string) {
	a.lower(model.ConfidenceMedium)
	rest := skipLeadingFlags(args, xargsValueFlags)
	if len(rest) == 0 {
		a.ops.Add(model.OpRead)
		return
	}

	hadDelete := a.ops[model.OpDelete]
	delete(a.ops, model.OpDelete)
	a.command(rest, false)
	deletes := a.ops[model.OpDelete]
	if hadDelete {
		a.ops.Add(model.OpDelete)
	}
	if !deletes {
		return
	}
	a.unknown()

	if commandName(rest[0]) == "rm" {
		rmArgs := rest[1:]
		recursive := hasShortFlag(rmArgs, 'r', "--recursive") || hasShortFlag(rmArgs, 'R', "")
		if recursive && len(positionals(rmArgs, nil)) == 0 {
			a.unbounded = true
		}
	}
}

func (a *analysis) interpreter(name string, args []string, piped bool) {
	a.ops.Add(model.OpProcess)
	if piped {
		a.unknown()
		return
	}
	for _, arg := range args {
		if inlineCodeFlags[arg] || inlineBundle(name, arg) {
			a.unknown()
			return
		}
		if name == "deno" && arg == "eval" {
			a.unknown()
			return
		}
		if arg == "-m" {
			a.lower(model.ConfidenceMedium)
			return
		}
		if !strings.HasPrefix(arg, "-") {
			a.ops.Add(model.OpRead)
			a.touch(arg)
			a.lower(model.ConfidenceMedium)
			return
		}
	}
	a.unknown()
}

// inlineBundle reports whether arg is a short-option bundle carrying one of
// the interpreter's inline-code letters.
func inlineBundle(name, arg string) bool {
	if len(arg) < 2 || arg[0] != '-' || arg[1] == '-' {
		return false
	}
	letters, ok := inlineCodeLetters[name]
	if !ok {
		letters = defaultInlineLetters
	}
	return letters != "" && strings.ContainsAny(arg[1:], letters)
}

// awk program text can call system() and open pipes, so only a program
// read from a file (-f) is treated as a plain read.
func (a *analysis) awk(args []string) {
	for i, arg := range args {
		if arg == "-f" && i+1 < len(args) {
			a.ops.Add(model.OpRead)
			a.touch(args[i+1])
			a.lower(model.ConfidenceMedium)
			return
		}
	}
	a.ops.Add(model.OpProcess)
	a.unknown()
}

func (a *analysis) rm(args []string) {
	a.ops.Add(model.OpDelete)
	recursive := hasShortFlag(args, 'r', "--recursive") || hasShortFlag(args, 'R', "")
	targets := positionals(args, nil)
	if len(targets) == 0 {
		a.lower(model.ConfidenceMedium)
		return
	}
	for _, t := range targets {
		abs, _ := a.touch(t)
		if recursive || strings.ContainsRune(t, '*') {
			a.checkScope(t, abs)
		}
	}
}

func (a *analysis) find(args []string) {
	a.ops.Add(model.OpRead)
	var starts []string
	i := 0
	for ; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") || args[i] == "(" || args[i] == "!" {
			break
		}
		starts = append(starts, args[i])
	}
	if len(starts) == 0 {
		starts = []string{"."}
	}
	abs := make([]string, len(starts))
	for j, s := range starts {
		abs[j], _ = a.touch(s)
	}

	deletes, filtered := false, false
	expr := args[i:]
	for j := 0; j < len(expr); j++ {
		if findFilters[expr[j]] {
			filtered = true
		}
		switch expr[j] {
		case "-delete":
			deletes = true
		case "-exec", "-execdir", "-ok", "-okdir":
			var inner []string
			for j++; j < len(expr) && expr[j] != ";" && expr[j] != "+"; j++ {
				if expr[j] != "{}" {
					inner = append(inner, expr[j])
				}
			}
			if len(inner) > 0 {
				hadDelete := a.ops[model.OpDelete]
				a.command(inner, false)
				if !hadDelete && a.ops[model.OpDelete] {
					deletes = true
				}
			}
		case "-fprint", "-fprint0", "-fprintf", "-fls":
			if j+1 < len(expr) {
				a.ops.Add(model.OpWrite)
				a.touch(expr[j+1])
			}
		}
	}
	if deletes {
		a.ops.Add(model.OpDelete)
		if filtered {
			return
		}
		for j, s := range starts {
			a.checkScope(s, abs[j])
		}
	}
}

// findFilters narrow a find expression to specific entries.
var findFilters = map[string]bool{
	"-name": true, "-iname": true, "-path": true, "-ipath": true, "-regex": true, "-iregex": true,
	"-newer": true, "-mtime": true, "-mmin": true, "-atime": true, "-size": true, "-user": true,
	"-empty": true, "-wholename": true,
}

func (a *analysis) sed(args []string) {
	inPlace := false
	hasScript := false
	for _, arg := range args {
		if arg == "--in-place" || strings.HasPrefix(arg, "--in-place=") ||
			(strings.HasPrefix(arg, "-i") && !strings.HasPrefix(arg, "--")) {
			inPlace = true
		}
		if arg == "-e" || arg == "-f" || arg == "--expression" || arg == "--file" {
			hasScript = true
		}
	}
	if inPlace {
		a.ops.Add(model.OpWrite)
	} else {
		a.ops.Add(model.OpRead)
	}
	pos := positionals(args, []string{"-e", "-f", "--expression", "--file"})
	if !hasScript && len(pos) > 0 {
		pos = pos[1:]
	}
	for _, p := range pos {
		a.touch(p)
	}
}

var curlValueFlags = []string{
	"-o", "--output", "-H", "--header", "-d", "--data", "--data-raw", "--data-binary",
	"--data-urlencode", "-X", "--request", "-u", "--user", "-A", "--user-agent", "-e",
	"--referer", "-T", "--upload-file", "-F", "--form", "-b", "--cookie", "-c",
	"--cookie-jar", "-m", "--max-time", "--connect-timeout", "-w", "--write-out", "-x",
	"--proxy", "-K", "--config", "--retry", "--url", "-r", "--range", "--cacert", "--cert", "--key",
}

func (a *analysis) curl(args []string) {
	a.ops.Add(model.OpNetwork)
	for i, arg := range args {
		if i+1 >= len(args) {
			break
		}
		switch arg {
		case "-o", "--output", "-c", "--cookie-jar":
			a.ops.Add(model.OpWrite)
			a.touch(args[i+1])
		case "-T", "--upload-file", "-K", "--config":
			a.ops.Add(model.OpRead)
			a.touch(args[i+1])
		case "--url":
			a.addURL(normalizeURL(args[i+1]))
		}
	}
	if hasShortFlag(args, 'O', "--remote-name") {
		a.ops.Add(model.OpWrite)
	}
	for _, p := range positionals(args, curlValueFlags) {
		if u := normalizeURL(p); u != "" {
			a.addURL(u)
		}
	}
}

var wgetValueFlags = []string{
	"-O", "--output-document", "-P", "--directory-prefix", "-o", "--output-file",
	"-U", "--user-agent", "--header", "-t", "--tries", "-T", "--timeout", "-i", "--input-file",
}

func (a *analysis) wget(args []string) {
	a.ops.Add(model.OpNetwork, model.OpWrite)
	for i, arg := range args {
		if i+1 >= len(args) {
			break
		}
		switch arg {
		case "-O", "--output-document", "-P", "--directory-prefix":
			a.touch(args[i+1])
		}
	}
	for _, p := range positionals(args, wgetValueFlags) {
		if u := normalizeURL(p); u != "" {
			a.addURL(u)
		}
	}
}

// normalizeURL turns a curl/wget positional into a URL, or "" if it does not look like one.
func normalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "://") {
		return s
	}
	host := s
	if idx := strings.IndexAny(host, "/:?"); idx >= 0 {
		host = host[:idx]
	}
	if host == "localhost" || strings.Contains(host, ".") {
		return "http://" + s
	}
	return ""
}

func (a *analysis) tar(args []string) {
	if len(args) == 0 {
		a.ops.Add(model.OpRead)
		return
	}
	mode := ""
	cluster := ""
	if !strings.HasPrefix(args[0], "-") {
		cluster = args[0]
	}
	flags := cluster
	for _, arg := range args {
		if len(arg) > 1 && arg[0] == '-' && arg[1] != '-' {
			flags += arg[1:]
		}
		switch arg {
		case "--extract", "--get":
			flags += "x"
		case "--create":
			flags += "c"
		case "--list":
			flags += "t"
		case "--append", "--update":
			flags += "r"
		}
	}
	switch {
	case strings.ContainsAny(flags, "xX"):
		mode = "x"
	case strings.ContainsAny(flags, "cru"):
		mode = "c"
	default:
		mode = "t"
	}

	var archive, dir string
	rest := args
	if cluster != "" {
		rest = args[1:]
		if strings.ContainsRune(cluster, 'f') && len(rest) > 0 {
			archive = rest[0]
			rest = rest[1:]
		}
	}
	for i := 0; i < len(rest); i++ {
		switch {
		case (rest[i] == "-f" || rest[i] == "--file") && i+1 < len(rest):
			archive = rest[i+1]
		case (rest[i] == "-C" || rest[i] == "--directory") && i+1 < len(rest):
			dir = rest[i+1]
		case strings.HasPrefix(rest[i], "--file="):
			archive = strings.TrimPrefix(rest[i], "--file=")
		case strings.HasPrefix(rest[i], "-") && !strings.HasPrefix(rest[i], "--") && strings.HasSuffix(rest[i], "f") && i+1 < len(rest):
			archive = rest[i+1]
		}
	}

	switch mode {
	case "x":
		a.ops.Add(model.OpRead, model.OpWrite)
		a.touch(archive)
		if dir != "" {
			a.touch(dir)
		} else if a.res.cwd != "" {
			a.touch(a.res.cwd)
		}
	case "c":
		a.ops.Add(model.OpRead, model.OpWrite)
		a.touch(archive)
	default:
		a.ops.Add(model.OpRead)
		a.touch(archive)
	}
}

func (a *analysis) perm(args []string) {
	a.ops.Add(model.OpWrite)
	recursive := hasShortFlag(args, 'R', "--recursive")
	pos := positionals(args, []string{"--reference"})
	if len(pos) < 2 {
		a.lower(model.ConfidenceMedium)
		return
	}
	for _, p := range pos[1:] {
		abs, _ := a.touch(p)
		if recursive {
			a.checkScope(p, abs)
		}
	}
}

// remoteHost extracts the host from [user@]host:path, or "" for a local path.
func remoteHost(spec string) string {
	if strings.HasPrefix(spec, "/") || strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "~") {
		return ""
	}
	if strings.HasPrefix(spec, "rsync://") {
		spec = strings.TrimPrefix(spec, "rsync://")
		if idx := strings.IndexByte(spec, '/'); idx >= 0 {
			spec = spec[:idx]
		}
		return spec
	}
	colon := strings.IndexByte(spec, ':')
	if colon <= 0 {
		return ""
	}
	if slash := strings.IndexByte(spec, '/'); slash >= 0 && slash < colon {
		return ""
	}
	host := spec[:colon]
	if at := strings.LastIndexByte(host, '@'); at >= 0 {
		host = host[at+1:]
	}
	return host
}

var rsyncValueFlags = []string{"-e", "--rsh", "--exclude", "--include", "--filter", "--exclude-from", "--include-from", "--files-from", "--port", "--log-file"}

func (a *analysis) rsync(args []string) {
	a.ops.Add(model.OpRead, model.OpWrite)
	pos := positionals(args, rsyncValueFlags)
	deletes := false
	for _, arg := range args {
		if strings.HasPrefix(arg, "--delete") || arg == "--remove-source-files" {
			deletes = true
		}
	}
	for i, p := range pos {
		if host := remoteHost(p); host != "" {
			a.ops.Add(model.OpNetwork)
			a.addURL("ssh://" + host)
			continue
		}
		abs, _ := a.touch(p)
		if deletes && i == len(pos)-1 {
			a.ops.Add(model.OpDelete)
			a.checkScope(p, abs)
		}
	}
	if deletes {
		a.ops.Add(model.OpDelete)
	}
}

func (a *analysis) scp(args []string) {
	a.ops.Add(model.OpNetwork, model.OpRead)
	pos := positionals(args, []string{"-P", "-i", "-o", "-F", "-c", "-l", "-S", "-J"})
	for i, p := range pos {
		if host := remoteHost(p); host != "" {
			a.addURL("ssh://" + host)
			continue
		}
		a.touch(p)
		if i == len(pos)-1 && len(pos) > 1 {
			a.ops.Add(model.OpWrite)
		}
	}
}

func (a *analysis) ssh(args []string) {
	a.ops.Add(model.OpNetwork, model.OpProcess)
	pos := positionals(args, []string{"-p", "-i", "-o", "-F", "-l", "-L", "-R", "-D", "-J", "-W", "-b", "-c", "-E", "-m", "-O", "-Q", "-S", "-w"})
	if len(pos) == 0 {
		return
	}
	host := pos[0]
	if at := strings.LastIndexByte(host, '@'); at >= 0 {
		host = host[at+1:]
	}
	a.addURL("ssh://" + host)
	if len(pos) > 1 {
		a.lower(model.ConfidenceMedium)
	}
}

func (a *analysis) dd(args []string) {
	var in, out string
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "if="):
			in = strings.TrimPrefix(arg, "if=")
		case strings.HasPrefix(arg, "of="):
			out = strings.TrimPrefix(arg, "of=")
		}
	}
	if in != "" && !isPseudoPath(in) {
		if isDevicePath(in) {
			a.ops.Add(model.OpDevice)
		} else {
			a.ops.Add(model.OpRead)
		}
		a.touch(in)
	}
	switch {
	case out == "":
		a.ops.Add(model.OpRead)
	case isPseudoPath(out):
		a.ops.Add(model.OpRead)
	case isDevicePath(out):
		a.ops.Add(model.OpDevice)
		a.touch(out)
	default:
		a.ops.Add(model.OpWrite)
		a.touch(out)
	}
}

var gitReadSubs = map[string]bool{
	"status": true, "log": true, "diff": true, "show": true, "blame": true, "grep": true,
	"ls-files": true, "ls-tree": true, "rev-parse": true, "describe": true, "shortlog": true,
	"reflog": true, "cat-file": true, "whatchanged": true, "version": true, "help": true,
	"rev-list": true, "name-rev": true, "merge-base": true, "for-each-ref": true, "show-ref": true,
	"check-ignore": true, "count-objects": true, "var": true, "archive": true,
}

var gitWriteSubs = map[string]bool{
	"add": true, "commit": true, "checkout": true, "switch": true, "merge": true, "rebase": true,
	"cherry-pick": true, "revert": true, "mv": true, "init": true, "apply": true, "am": true,
	"restore": true, "notes": true, "worktree": true, "submodule": true, "config": true,
	"bisect": true, "tag": true, "branch": true, "stash": true, "sparse-checkout": true,
	"update-index": true, "commit-tree": true, "format-patch": true,
}

var gitGlobalValueFlags = []string{"-C", "-c", "--git-dir", "--work-tree", "--namespace", "--exec-path"}

func (a *analysis) git(args []string) {
	i := 0
	for ; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			break
		}
		if arg == "-C" && i+1 < len(args) {
			if abs, ok := a.res.resolve(args[i+1]); ok {
				a.res.cwd = abs
			}
		}
		if containsString(gitGlobalValueFlags, arg) {
			i++
		}
	}
	if i >= len(args) {
		a.ops.Add(model.OpRead)
		return
	}
	sub := args[i]
	rest := args[i+1:]
	a.roots = append(a.roots, sub)

	switch {
	case gitReadSubs[sub]:
		a.ops.Add(model.OpRead)
	case sub == "branch" || sub == "tag":
		switch {
		case hasShortFlag(rest, 'd', "--delete") || hasShortFlag(rest, 'D', ""):
			a.ops.Add(model.OpDelete, model.OpWrite)
		case len(positionals(rest, []string{"-m", "--message", "-u", "--set-upstream-to"})) > 0:
			a.ops.Add(model.OpWrite)
		default:
			a.ops.Add(model.OpRead)
		}
	case sub == "stash":
		if len(rest) > 0 && (rest[0] == "drop" || rest[0] == "clear") {
			a.ops.Add(model.OpDelete)
		} else {
			a.ops.Add(model.OpWrite)
		}
	case sub == "rm":
		a.ops.Add(model.OpDelete, model.OpWrite)
		recursive := hasShortFlag(rest, 'r', "")
		for _, p := range positionals(rest, nil) {
			abs, _ := a.touch(p)
			if recursive {
				a.checkScope(p, abs)
			}
		}
	case sub == "clean":
		a.ops.Add(model.OpDelete)
		if a.res.cwd != "" {
			a.touch(a.res.cwd)
		}
	case sub == "reset":
		a.ops.Add(model.OpWrite)
		if containsString(rest, "--hard") {
			a.ops.Add(model.OpDelete)
		}
	case sub == "push":
		a.ops.Add(model.OpNetwork)
		for _, arg := range rest {
			if arg == "--force" || arg == "-f" || strings.HasPrefix(arg, "--force-with-lease") ||
				arg == "--delete" || arg == "--mirror" || arg == "--prune" {
				a.ops.Add(model.OpDelete)
			}
		}
		for _, p := range positionals(rest, []string{"-o", "--push-option", "--repo"}) {
			if strings.HasPrefix(p, "+") || strings.HasPrefix(p, ":") {
				a.ops.Add(model.OpDelete)
			}
		}
	case sub == "pull" || sub == "clone":
		a.ops.Add(model.OpNetwork, model.OpWrite)
		pos := positionals(rest, []string{"-b", "--branch", "--depth", "-o", "--origin", "--reference", "-c", "--config"})
		if sub == "clone" && len(pos) > 0 {
			if strings.Contains(pos[0], "://") {
				a.addURL(pos[0])
			} else if host := remoteHost(pos[0]); host != "" {
				a.addURL("ssh://" + host)
			}
			if len(pos) > 1 {
				a.touch(pos[1])
			}
		}
	case sub == "fetch" || sub == "ls-remote":
		a.ops.Add(model.OpNetwork)
	case sub == "remote":
		if len(rest) > 0 && (rest[0] == "add" || rest[0] == "set-url" || rest[0] == "rename") {
			a.ops.Add(model.OpWrite)
		} else if len(rest) > 0 && (rest[0] == "remove" || rest[0] == "rm" || rest[0] == "prune") {
			a.ops.Add(model.OpDelete)
		} else {
			a.ops.Add(model.OpRead)
		}
	case sub == "gc" || sub == "prune":
		a.ops.Add(model.OpDelete)
	case gitWriteSubs[sub]:
		a.ops.Add(model.OpWrite)
		switch sub {
		case "add", "mv":
			for _, p := range positionals(rest, nil) {
				a.touch(p)
			}
		case "checkout", "restore":
			dashdash := -1
			for j, arg := range rest {
				if arg == "--" {
					dashdash = j
					break
				}
			}
			if containsString(rest, ".") || dashdash >= 0 || hasShortFlag(rest, 'f', "--force") {
				a.ops.Add(model.OpDelete)
			}
			if dashdash >= 0 {
				for _, p := range rest[dashdash+1:] {
					a.touch(p)
				}
			} else if sub == "restore" {
				for _, p := range positionals(rest, []string{"-s", "--source"}) {
					a.touch(p)
				}
			}
		}
	default:
		a.ops.Add(model.OpWrite)
		a.lower(model.ConfidenceMedium)
	}
}
