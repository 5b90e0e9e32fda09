package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/basinfs/hfs/internal/hfs"
	"github.com/basinfs/hfs/internal/node"
)

const markerName = ".hfssnapshot"

var (
	snapshotFileAttrs   []string
	snapshotDirAttrs    []string
	snapshotNoMarker    bool
	snapshotWriteMarker bool
	snapshotWriteAll    bool
	snapshotProcessMark bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <target>...",
	Short: "Archive a directory or file tree into MapNode/FileNode form",
	Long: `Snapshot walks each target, storing regular files as FileNode objects and
directories as MapNode objects, and prints the resulting key for each target.
A symlink is followed to whatever it points at; anything else (devices, sockets,
FIFOs) is skipped. Repeatable --file-attr/--dir-attr flags control which
metadata, if any, ends up on the generated nodes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringArrayVar(&snapshotFileAttrs, "file-attr", nil,
		"attribute to record on file nodes: title, exec, time, ctime, mode (repeatable)")
	snapshotCmd.Flags().StringArrayVar(&snapshotDirAttrs, "dir-attr", nil,
		"attribute to record on directory nodes: title, time, ctime, mode (repeatable)")
	snapshotCmd.Flags().BoolVar(&snapshotNoMarker, "no-marker", false,
		"ignore any .hfssnapshot marker files found while walking")
	snapshotCmd.Flags().BoolVar(&snapshotWriteMarker, "write-marker", false,
		"leave a .hfssnapshot marker in each target's top directory")
	snapshotCmd.Flags().BoolVar(&snapshotWriteAll, "write-marker-recursive", false,
		"leave a .hfssnapshot marker in every directory visited")
	snapshotCmd.Flags().BoolVar(&snapshotProcessMark, "process-marker", false,
		"snapshot .hfssnapshot files themselves instead of skipping them")
}

type snapshotOpts struct {
	fileAttrs     map[string]bool
	dirAttrs      map[string]bool
	useMarker     bool
	processMarker bool
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	p, err := openPool()
	if err != nil {
		return err
	}
	h := hfs.Open(p, hfs.SentinelRoot)

	opts := snapshotOpts{
		fileAttrs:     toSet(snapshotFileAttrs),
		dirAttrs:      toSet(snapshotDirAttrs),
		useMarker:     !snapshotNoMarker && !snapshotProcessMark,
		processMarker: snapshotProcessMark,
	}
	if snapshotProcessMark {
		opts.useMarker = false
	}

	failed := 0
	for _, target := range args {
		visited := make(map[string]string)
		key, err := snapshotPath(h, target, opts, visited, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s failed: %v\n", target, err)
			failed++
			continue
		}
		fmt.Println(key)
	}
	if failed == 1 {
		return fmt.Errorf("failed to snapshot a target")
	}
	if failed > 0 {
		return fmt.Errorf("failed to snapshot %d targets", failed)
	}
	return nil
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it] = true
	}
	return out
}

// snapshotPath recurses into path, returning the key of the node it
// produced. visited is keyed by the path's resolved (symlink-free) form
// so that a directory reachable by two different links is only
// snapshotted once, and a symlink pointing back at one of its own
// ancestors is reported rather than looped on forever.
func snapshotPath(h *hfs.HFS, path string, opts snapshotOpts, visited map[string]string, topLevel bool) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	if key, ok := visited[resolved]; ok {
		if key == "" {
			return "", fmt.Errorf("%s: a symlink to its own ancestor", path)
		}
		return key, nil
	}
	visited[resolved] = ""

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	switch {
	case info.Mode().IsRegular():
		fmt.Println("F:", path)
		key, err := snapshotFile(h, path, info, opts.fileAttrs)
		if err != nil {
			return "", err
		}
		visited[resolved] = key
		return key, nil

	case info.IsDir():
		fmt.Println("D:", path)
		key, err := snapshotDir(h, path, info, opts, visited)
		if err != nil {
			return "", err
		}
		visited[resolved] = key
		if topLevel && (snapshotWriteMarker || snapshotWriteAll) {
			writeMarker(path, key)
		}
		return key, nil

	default:
		return "", nil
	}
}

func snapshotFile(h *hfs.HFS, path string, info os.FileInfo, attrs map[string]bool) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	dataKey, err := h.Put(f)
	if err != nil {
		return "", fmt.Errorf("put %s: %w", path, err)
	}

	nodeAttrs := map[string]string{}
	for attr := range attrs {
		if err := applyFileAttr(nodeAttrs, attr, path, info); err != nil {
			return "", err
		}
	}
	key, err := h.Put(node.Node(node.NewFile(dataKey, nodeAttrs)))
	if err != nil {
		return "", fmt.Errorf("commit file node %s: %w", path, err)
	}
	return key, nil
}

func snapshotDir(h *hfs.HFS, path string, info os.FileInfo, opts snapshotOpts, visited map[string]string) (string, error) {
	if opts.useMarker {
		if data, err := os.ReadFile(filepath.Join(path, markerName)); err == nil {
			return strings.ToLower(strings.TrimSpace(string(data))), nil
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}

	children := map[string]string{}
	for _, e := range entries {
		if e.Name() == markerName && !opts.processMarker {
			continue
		}
		childKey, err := snapshotPath(h, filepath.Join(path, e.Name()), opts, visited, false)
		if err != nil {
			return "", err
		}
		if childKey != "" {
			children[e.Name()] = childKey
		}
	}

	nodeAttrs := map[string]string{}
	for attr := range opts.dirAttrs {
		if err := applyDirAttr(nodeAttrs, attr, path, info); err != nil {
			return "", err
		}
	}

	key, err := h.Put(node.Node(node.NewMap(children, nodeAttrs)))
	if err != nil {
		return "", fmt.Errorf("commit dir node %s: %w", path, err)
	}
	if err := h.Flush(); err != nil {
		return "", err
	}
	if snapshotWriteAll {
		writeMarker(path, key)
	}
	return key, nil
}

func applyFileAttr(attrs map[string]string, attr, path string, info os.FileInfo) error {
	switch attr {
	case "title":
		base := filepath.Base(path)
		attrs["title"] = strings.TrimSuffix(base, filepath.Ext(base))
	case "type":
		// No type is ever inferred; kept for command-line compatibility.
	case "exec":
		if info.Mode().Perm()&0o111 != 0 {
			attrs["exec"] = "true"
		}
	case "time":
		attrs["time"] = formatUnixTime(info.ModTime().Unix(), int64(info.ModTime().Nanosecond()))
	case "ctime":
		sec, nsec := statCtime(info)
		attrs["time"] = formatUnixTime(sec, nsec)
	case "mode":
		applyPOSIXMode(attrs, info)
	default:
		return fmt.Errorf("unsupported file attr: %s", attr)
	}
	return nil
}

func applyDirAttr(attrs map[string]string, attr, path string, info os.FileInfo) error {
	switch attr {
	case "title":
		attrs["title"] = filepath.Base(path)
	case "time":
		attrs["time"] = formatUnixTime(info.ModTime().Unix(), int64(info.ModTime().Nanosecond()))
	case "ctime":
		sec, nsec := statCtime(info)
		attrs["time"] = formatUnixTime(sec, nsec)
	case "mode":
		applyPOSIXMode(attrs, info)
	default:
		return fmt.Errorf("unsupported dir attr: %s", attr)
	}
	return nil
}

func applyPOSIXMode(attrs map[string]string, info os.FileInfo) {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		attrs["uid"] = strconv.Itoa(int(st.Uid))
		attrs["gid"] = strconv.Itoa(int(st.Gid))
	}
	attrs["access"] = strconv.FormatUint(uint64(info.Mode().Perm()), 8)
}

func statCtime(info os.FileInfo) (sec, nsec int64) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime().Unix(), int64(info.ModTime().Nanosecond())
	}
	return int64(st.Ctim.Sec), int64(st.Ctim.Nsec)
}

func formatUnixTime(sec, nsec int64) string {
	if nsec == 0 {
		return strconv.FormatInt(sec, 10)
	}
	return fmt.Sprintf("%d.%09d", sec, nsec)
}

func writeMarker(dir, key string) {
	_ = os.WriteFile(filepath.Join(dir, markerName), []byte(key+"\n"), 0o644)
}
