package actionprofile

import (
	"strings"

	"github.com/ppiankov/ladder/internal/model"
)

var (
	opsRead    = []model.OperationClass{model.OpRead}
	opsWrite   = []model.OperationClass{model.OpWrite}
	opsDelete  = []model.OperationClass{model.OpDelete}
	opsNetwork = []model.OperationClass{model.OpNetwork}
	opsProcess = []model.OperationClass{model.OpProcess}
	opsDevice  = []model.OperationClass{model.OpDevice}

	opsFetch   = []model.OperationClass{model.OpNetwork, model.OpWrite}
	opsRemove  = []model.OperationClass{model.OpDelete, model.OpWrite}
	opsRemote  = []model.OperationClass{model.OpNetwork, model.OpRead}
	opsDeploy  = []model.OperationClass{model.OpNetwork, model.OpWrite}
	opsCompile = []model.OperationClass{model.OpProcess, model.OpWrite}
)

// commandSpec describes a simple command whose positional arguments may be paths.
type commandSpec struct {
	ops        []model.OperationClass
	pathArgs   bool
	skip       int // leading positionals that are not paths (patterns, modes, owners)
	valueFlags []string
}

var simpleCommands = map[string]commandSpec{
	// read-only inspection
	"ls":        {ops: opsRead, pathArgs: true},
	"cat":       {ops: opsRead, pathArgs: true},
	"head":      {ops: opsRead, pathArgs: true, valueFlags: []string{"-n", "-c"}},
	"tail":      {ops: opsRead, pathArgs: true, valueFlags: []string{"-n", "-c"}},
	"less":      {ops: opsRead, pathArgs: true},
	"more":      {ops: opsRead, pathArgs: true},
	"wc":        {ops: opsRead, pathArgs: true},
	"stat":      {ops: opsRead, pathArgs: true},
	"du":        {ops: opsRead, pathArgs: true, valueFlags: []string{"-d", "--max-depth"}},
	"tree":      {ops: opsRead, pathArgs: true, valueFlags: []string{"-L"}},
	"diff":      {ops: opsRead, pathArgs: true},
	"file":      {ops: opsRead, pathArgs: true},
	"nl":        {ops: opsRead, pathArgs: true},
	"xxd":       {ops: opsRead, pathArgs: true},
	"hexdump":   {ops: opsRead, pathArgs: true},
	"od":        {ops: opsRead, pathArgs: true},
	"strings":   {ops: opsRead, pathArgs: true},
	"md5sum":    {ops: opsRead, pathArgs: true},
	"sha1sum":   {ops: opsRead, pathArgs: true},
	"sha256sum": {ops: opsRead, pathArgs: true},
	"shasum":    {ops: opsRead, pathArgs: true, valueFlags: []string{"-a"}},
	"realpath":  {ops: opsRead, pathArgs: true},
	"readlink":  {ops: opsRead, pathArgs: true},
	"grep":      {ops: opsRead, pathArgs: true, skip: 1, valueFlags: []string{"-m", "-A", "-B", "-C", "--include", "--exclude"}},
	"egrep":     {ops: opsRead, pathArgs: true, skip: 1},
	"fgrep":     {ops: opsRead, pathArgs: true, skip: 1},
	"rg":        {ops: opsRead, pathArgs: true, skip: 1, valueFlags: []string{"-g", "--glob", "-t", "--type", "-m", "-A", "-B", "-C"}},
	"jq":        {ops: opsRead, pathArgs: true, skip: 1, valueFlags: []string{"--arg", "--argjson"}},
	"yq":        {ops: opsRead, pathArgs: true, skip: 1},
	"sort":      {ops: opsRead, pathArgs: true, valueFlags: []string{"-k", "-t", "-o"}},
	"uniq":      {ops: opsRead, pathArgs: true},
	"cut":       {ops: opsRead, pathArgs: true, valueFlags: []string{"-d", "-f", "-c"}},
	"column":    {ops: opsRead, pathArgs: true},
	"pwd":       {ops: opsRead},
	"echo":      {ops: opsRead},
	"printf":    {ops: opsRead},
	"which":     {ops: opsRead},
	"whereis":   {ops: opsRead},
	"type":      {ops: opsRead},
	"df":        {ops: opsRead},
	"printenv":  {ops: opsRead},
	"whoami":    {ops: opsRead},
	"id":        {ops: opsRead},
	"date":      {ops: opsRead},
	"uname":     {ops: opsRead},
	"hostname":  {ops: opsRead},
	"uptime":    {ops: opsRead},
	"free":      {ops: opsRead},
	"ps":        {ops: opsRead},
	"top":       {ops: opsRead},
	"htop":      {ops: opsRead},
	"lsof":      {ops: opsRead},
	"history":   {ops: opsRead},
	"man":       {ops: opsRead},
	"tr":        {ops: opsRead},
	"test":      {ops: opsRead},
	"[":         {ops: opsRead},
	"true":      {ops: opsRead},
	"false":     {ops: opsRead},
	"basename":  {ops: opsRead},
	"dirname":   {ops: opsRead},
	"sleep":     {ops: opsRead},

	// filesystem writes
	"touch":    {ops: opsWrite, pathArgs: true},
	"mkdir":    {ops: opsWrite, pathArgs: true, valueFlags: []string{"-m"}},
	"tee":      {ops: opsWrite, pathArgs: true},
	"ln":       {ops: opsWrite, pathArgs: true},
	"cp":       {ops: opsWrite, pathArgs: true, valueFlags: []string{"-t", "-S"}},
	"install":  {ops: opsWrite, pathArgs: true, valueFlags: []string{"-m", "-o", "-g"}},
	"truncate": {ops: opsWrite, pathArgs: true, valueFlags: []string{"-s"}},
	"patch":    {ops: opsWrite, pathArgs: true, valueFlags: []string{"-p", "-i"}},
	"unzip":    {ops: opsWrite, pathArgs: true, valueFlags: []string{"-d"}},
	"zip":      {ops: opsWrite, pathArgs: true},
	"mktemp":   {ops: opsWrite},
	"mv":       {ops: opsRemove, pathArgs: true, valueFlags: []string{"-t", "-S"}},
	"gzip":     {ops: opsRemove, pathArgs: true},
	"gunzip":   {ops: opsRemove, pathArgs: true},
	"bzip2":    {ops: opsRemove, pathArgs: true},
	"xz":       {ops: opsRemove, pathArgs: true},
	"unxz":     {ops: opsRemove, pathArgs: true},

	// deletes
	"rmdir":     {ops: opsDelete, pathArgs: true},
	"unlink":    {ops: opsDelete, pathArgs: true},
	"shred":     {ops: opsDelete, pathArgs: true, valueFlags: []string{"-n", "-s"}},
	"srm":       {ops: opsDelete, pathArgs: true},
	"trash":     {ops: opsDelete, pathArgs: true},
	"trash-put": {ops: opsDelete, pathArgs: true},

	// network
	"ssh":        {ops: []model.OperationClass{model.OpNetwork, model.OpProcess}},
	"sftp":       {ops: opsFetch},
	"ftp":        {ops: opsFetch},
	"nc":         {ops: opsNetwork},
	"netcat":     {ops: opsNetwork},
	"ncat":       {ops: opsNetwork},
	"socat":      {ops: opsNetwork},
	"telnet":     {ops: opsNetwork},
	"ping":       {ops: opsNetwork},
	"dig":        {ops: opsNetwork},
	"nslookup":   {ops: opsNetwork},
	"host":       {ops: opsNetwork},
	"whois":      {ops: opsNetwork},
	"traceroute": {ops: opsNetwork},
	"mtr":        {ops: opsNetwork},
	"nmap":       {ops: opsNetwork},
	"http":       {ops: opsNetwork},
	"https":      {ops: opsNetwork},
	"aria2c":     {ops: opsFetch},
	"npx":        {ops: []model.OperationClass{model.OpProcess, model.OpNetwork}},
	"bunx":       {ops: []model.OperationClass{model.OpProcess, model.OpNetwork}},

	// processes
	"kill":     {ops: opsProcess},
	"pkill":    {ops: opsProcess},
	"killall":  {ops: opsProcess},
	"crontab":  {ops: opsProcess},
	"at":       {ops: opsProcess},
	"watch":    {ops: opsProcess},
	"tmux":     {ops: opsProcess},
	"screen":   {ops: opsProcess},
	"open":     {ops: opsProcess},
	"xdg-open": {ops: opsProcess},
	"make":     {ops: opsCompile},
	"cmake":    {ops: opsCompile},
	"ninja":    {ops: opsCompile},
	"gradle":   {ops: opsCompile},
	"mvn":      {ops: opsCompile},
	"tsc":      {ops: opsCompile},
	"pytest":   {ops: opsProcess},
	"jest":     {ops: opsProcess},

	// devices and machine state
	"dd":          {ops: opsDevice},
	"mkfs":        {ops: opsDevice, pathArgs: true},
	"fdisk":       {ops: opsDevice, pathArgs: true},
	"sfdisk":      {ops: opsDevice, pathArgs: true},
	"gdisk":       {ops: opsDevice, pathArgs: true},
	"sgdisk":      {ops: opsDevice, pathArgs: true},
	"parted":      {ops: opsDevice, pathArgs: true},
	"wipefs":      {ops: opsDevice, pathArgs: true},
	"blkdiscard":  {ops: opsDevice, pathArgs: true},
	"hdparm":      {ops: opsDevice, pathArgs: true},
	"mount":       {ops: opsDevice},
	"umount":      {ops: opsDevice},
	"diskutil":    {ops: opsDevice},
	"losetup":     {ops: opsDevice},
	"mkswap":      {ops: opsDevice, pathArgs: true},
	"swapon":      {ops: opsDevice},
	"swapoff":     {ops: opsDevice},
	"cryptsetup":  {ops: opsDevice},
	"eject":       {ops: opsDevice},
	"format":      {ops: opsDevice},
	"shutdown":    {ops: opsDevice},
	"reboot":      {ops: opsDevice},
	"halt":        {ops: opsDevice},
	"poweroff":    {ops: opsDevice},
	"init":        {ops: opsDevice},
	"nvram":       {ops: opsDevice},
	"csrutil":     {ops: opsDevice},
	"flashrom":    {ops: opsDevice},
	"efibootmgr":  {ops: opsDevice},

	"grub-install": {ops: opsDevice},
}

// subcommandSpec covers tools whose first positional selects the operation.
type subcommandSpec struct {
	subs       map[string][]model.OperationClass
	fallback   []model.OperationClass
	valueFlags []string
}

var packageManagerSubs = map[string][]model.OperationClass{
	"install":    opsFetch,
	"i":          opsFetch,
	"add":        opsFetch,
	"ci":         opsFetch,
	"update":     opsFetch,
	"upgrade":    opsFetch,
	"reinstall":  opsFetch,
	"download":   opsFetch,
	"remove":     opsRemove,
	"rm":         opsRemove,
	"uninstall":  opsRemove,
	"purge":      opsRemove,
	"autoremove": opsRemove,
	"erase":      opsRemove,
	"search":     opsRemote,
	"list":       opsRead,
	"ls":         opsRead,
	"show":       opsRead,
	"info":       opsRead,
	"view":       opsRead,
	"outdated":   opsRemote,
	"freeze":     opsRead,
	"run":        opsProcess,
	"test":       opsProcess,
	"start":      opsProcess,
	"exec":       opsProcess,
	"publish":    opsDeploy,
	"init":       opsWrite,
	"audit":      opsRemote,
	"cache":      opsRemove,
}

var subcommandTools = map[string]subcommandSpec{
	"npm":     {subs: packageManagerSubs, fallback: opsProcess, valueFlags: []string{"--prefix", "-w", "--workspace"}},
	"yarn":    {subs: packageManagerSubs, fallback: opsFetch},
	"pnpm":    {subs: packageManagerSubs, fallback: opsProcess, valueFlags: []string{"-C", "--dir", "--filter"}},
	"bun":     {subs: packageManagerSubs, fallback: opsProcess},
	"pip":     {subs: packageManagerSubs, fallback: opsFetch},
	"pip3":    {subs: packageManagerSubs, fallback: opsFetch},
	"apt":     {subs: packageManagerSubs, fallback: opsFetch},
	"apt-get": {subs: packageManagerSubs, fallback: opsFetch},
	"yum":     {subs: packageManagerSubs, fallback: opsFetch},
	"dnf":     {subs: packageManagerSubs, fallback: opsFetch},
	"brew":    {subs: packageManagerSubs, fallback: opsFetch},
	"snap":    {subs: packageManagerSubs, fallback: opsFetch},
	"zypper":  {subs: packageManagerSubs, fallback: opsFetch},
	"pacman":  {subs: packageManagerSubs, fallback: opsFetch},
	"gem":     {subs: packageManagerSubs, fallback: opsFetch},
	"go": {
		subs: map[string][]model.OperationClass{
			"build":    opsCompile,
			"test":     opsProcess,
			"run":      opsProcess,
			"vet":      opsProcess,
			"fmt":      opsWrite,
			"generate": opsCompile,
			"get":      opsFetch,
			"install":  opsFetch,
			"mod":      opsFetch,
			"work":     opsWrite,
			"clean":    opsRemove,
			"env":      opsRead,
			"version":  opsRead,
			"list":     opsRead,
			"doc":      opsRead,
		},
		fallback: opsProcess,
	},
	"cargo": {
		subs: map[string][]model.OperationClass{
			"build":   opsCompile,
			"check":   opsProcess,
			"clippy":  opsProcess,
			"test":    opsProcess,
			"bench":   opsProcess,
			"run":     opsProcess,
			"fmt":     opsWrite,
			"add":     opsFetch,
			"install": opsFetch,
			"update":  opsFetch,
			"fetch":   opsFetch,
			"publish": opsDeploy,
			"clean":   opsRemove,
			"tree":    opsRead,
		},
		fallback: opsProcess,
	},
	"docker": dockerSpec,
	"podman": dockerSpec,
	"kubectl": {
		subs: map[string][]model.OperationClass{
			"get":           opsRemote,
			"describe":      opsRemote,
			"logs":          opsRemote,
			"top":           opsRemote,
			"explain":       opsRemote,
			"version":       opsRemote,
			"api-resources": opsRemote,
			"apply":         opsDeploy,
			"create":        opsDeploy,
			"edit":          opsDeploy,
			"patch":         opsDeploy,
			"replace":       opsDeploy,
			"scale":         opsDeploy,
			"rollout":       opsDeploy,
			"set":           opsDeploy,
			"label":         opsDeploy,
			"annotate":      opsDeploy,
			"delete":        {model.OpDelete, model.OpNetwork},
			"drain":         {model.OpDelete, model.OpNetwork},
			"exec":          {model.OpProcess, model.OpNetwork},
			"run":           {model.OpProcess, model.OpNetwork},
			"attach":        {model.OpProcess, model.OpNetwork},
			"port-forward":  {model.OpProcess, model.OpNetwork},
			"cp":            {model.OpProcess, model.OpNetwork, model.OpWrite},
		},
		fallback:   opsDeploy,
		valueFlags: []string{"-n", "--namespace", "--context", "-f", "--kubeconfig"},
	},
	"systemctl": serviceSpec,
	"service":   serviceSpec,
	"launchctl": serviceSpec,
}

var dockerSpec = subcommandSpec{
	subs: map[string][]model.OperationClass{
		"ps":      opsRead,
		"images":  opsRead,
		"inspect": opsRead,
		"logs":    opsRead,
		"version": opsRead,
		"info":    opsRead,
		"run":     opsProcess,
		"exec":    opsProcess,
		"start":   opsProcess,
		"stop":    opsProcess,
		"restart": opsProcess,
		"kill":    opsProcess,
		"compose": opsProcess,
		"build":   opsCompile,
		"rm":      opsDelete,
		"rmi":     opsDelete,
		"prune":   opsDelete,
		"system":  opsDelete,
		"volume":  opsRemove,
		"pull":    opsFetch,
		"push":    opsDeploy,
		"login":   opsNetwork,
	},
	fallback:   opsProcess,
	valueFlags: []string{"-H", "--host", "--context"},
}

var serviceSpec = subcommandSpec{
	subs: map[string][]model.OperationClass{
		"status":     opsRead,
		"show":       opsRead,
		"list":       opsRead,
		"list-units": opsRead,
		"is-active":  opsRead,
		"is-enabled": opsRead,
		"cat":        opsRead,
	},
	fallback: opsProcess,
}

var shellNames = map[string]bool{
	"sh": true, "bash": true, "zsh": true, "dash": true, "ksh": true, "fish": true, "csh": true, "tcsh": true,
}

var interpreterNames = map[string]bool{
	"python": true, "python3": true, "python2": true, "node": true, "nodejs": true, "deno": true,
	"ruby": true, "perl": true, "php": true, "lua": true, "osascript": true,
	"powershell": true, "pwsh": true, "rscript": true,
}

// inlineCodeFlags introduce code passed on the command line.
var inlineCodeFlags = map[string]bool{
	"-c": true, "-e": true, "--eval": true, "-E": true, "-r": true, "-p": true, "--print": true, "-Command": true,
}

// inlineCodeLetters lists, per interpreter, the short options that take
// program text, alone or bundled (perl -ne, perl -pie). Interpreters not
// listed use defaultInlineLetters.
var inlineCodeLetters = map[string]string{
	"python": "c", "python2": "c", "python3": "c",
	"node": "ep", "nodejs": "ep", "deno": "",
	"ruby": "e", "perl": "eE", "php": "rRBE", "lua": "e",
	"osascript": "e", "rscript": "e", "powershell": "c", "pwsh": "c",
}

const defaultInlineLetters = "ceEpr"

var awkNames = map[string]bool{"awk": true, "gawk": true, "mawk": true, "nawk": true}

// commandName returns the lowercased binary name without its directory.
func commandName(word string) string {
	name := word
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.ToLower(name)
}

// positionals returns non-flag arguments, skipping values of valueFlags.
func positionals(args []string, valueFlags []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			out = append(out, args[i+1:]...)
			break
		}
		if strings.HasPrefix(a, "-") && a != "-" {
			if !strings.Contains(a, "=") && containsString(valueFlags, a) {
				i++
			}
			continue
		}
		out = append(out, a)
	}
	return out
}

// skipLeadingFlags drops flags (and values of valueFlags) up to the first positional.
func skipLeadingFlags(args []string, valueFlags []string) []string {
	for len(args) > 0 {
		a := args[0]
		if a == "--" {
			return args[1:]
		}
		if !strings.HasPrefix(a, "-") || a == "-" {
			return args
		}
		if containsString(valueFlags, a) && len(args) > 1 {
			args = args[2:]
			continue
		}
		args = args[1:]
	}
	return args
}

// hasShortFlag reports whether any short-flag cluster contains letter,
// or any long flag equals long.
func hasShortFlag(args []string, letter byte, long string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if long != "" && a == long {
			return true
		}
		if len(a) > 1 && a[0] == '-' && a[1] != '-' && strings.IndexByte(a[1:], letter) >= 0 {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func isAssignment(word string) bool {
	eq := strings.IndexByte(word, '=')
	if eq <= 0 {
		return false
	}
	for i, r := range word[:eq] {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}
