package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryFile struct {
	absPath string
	relPath string
	content []byte
	info    *memoryFileInfo
}

func (f *memoryFile) Path() string         { return f.absPath }
func (f *memoryFile) RelativePath() string { return f.relPath }
func (f *memoryFile) Info() FileInfo       { return f.info }

func (f *memoryFile) ReadContent() ([]byte, error) {
	return f.content, nil
}

type memoryDirectory struct {
	absPath string
	fs      *MemoryFileSystem
}

func (d *memoryDirectory) Path() string { return d.absPath }

func (d *memoryDirectory) Walk(fn func(File, error) error) error {
	for _, entry := range d.fs.entriesUnder(d.absPath) {
		if err := fn(entry, nil); err != nil {
			return err
		}
	}
	return nil
}

// MemoryFileSystem is an in-memory FileSystemProvider for tests.
// Paths use forward slashes; relative paths resolve against the root.
// Safe for concurrent use.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string]*memoryFile
	root  string
	now   func() time.Time
}

// NewMemoryFileSystem creates an empty in-memory filesystem rooted at root.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	mfs := &MemoryFileSystem{
		files: make(map[string]*memoryFile),
		root:  path.Clean(filepath.ToSlash(root)),
		now:   time.Now,
	}
	mfs.addDir(mfs.root)
	return mfs
}

// AddFile adds a file, creating parent directories as needed.
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.put(mfs.abs(filePath), []byte(content))
}

// Files returns the paths of all regular files in lexical order.
func (mfs *MemoryFileSystem) Files() []string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	var out []string
	for p, f := range mfs.files {
		if !f.info.IsDir() {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (mfs *MemoryFileSystem) Open(openPath string) (Directory, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	absPath := mfs.abs(openPath)
	f, ok := mfs.files[absPath]
	if !ok {
		return nil, fmt.Errorf("directory not found: %s: %w", openPath, fs.ErrNotExist)
	}
	if !f.info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", openPath)
	}
	return &memoryDirectory{absPath: absPath, fs: mfs}, nil
}

func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	f, ok := mfs.files[mfs.abs(filePath)]
	if !ok {
		return nil, fmt.Errorf("file not found: %s: %w", filePath, fs.ErrNotExist)
	}
	if f.info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	out := make([]byte, len(f.content))
	copy(out, f.content)
	return out, nil
}

func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	f, ok := mfs.files[mfs.abs(statPath)]
	if !ok {
		return nil, fmt.Errorf("path not found: %s: %w", statPath, fs.ErrNotExist)
	}
	return f.info, nil
}

func (mfs *MemoryFileSystem) MkdirAll(dirPath string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.abs(dirPath)
	for p := absPath; ; p = path.Dir(p) {
		if f, ok := mfs.files[p]; ok && !f.info.IsDir() {
			return fmt.Errorf("path is a file: %s", p)
		}
		if p == path.Dir(p) {
			break
		}
	}
	mfs.addDir(absPath)
	return nil
}

func (mfs *MemoryFileSystem) WriteFile(filePath string, data []byte) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.abs(filePath)
	parent, ok := mfs.files[path.Dir(absPath)]
	if !ok {
		return fmt.Errorf("parent directory of %s: %w", filePath, fs.ErrNotExist)
	}
	if !parent.info.IsDir() {
		return fmt.Errorf("parent of %s is not a directory", filePath)
	}
	content := make([]byte, len(data))
	copy(content, data)
	mfs.put(absPath, content)
	return nil
}

func (mfs *MemoryFileSystem) RemoveAll(removePath string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.abs(removePath)
	if absPath == mfs.root {
		return fmt.Errorf("refusing to remove the filesystem root %s", removePath)
	}
	for p := range mfs.files {
		if p == absPath || strings.HasPrefix(p, absPath+"/") {
			delete(mfs.files, p)
		}
	}
	return nil
}

func (mfs *MemoryFileSystem) abs(p string) string {
	p = filepath.ToSlash(p)
	if p == "" || p == "." {
		return mfs.root
	}
	if !path.IsAbs(p) {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

func (mfs *MemoryFileSystem) rel(absPath string) string {
	if absPath == mfs.root {
		return "."
	}
	if mfs.root == "/" {
		return strings.TrimPrefix(absPath, "/")
	}
	return strings.TrimPrefix(absPath, mfs.root+"/")
}

func (mfs *MemoryFileSystem) put(absPath string, content []byte) {
	mfs.addDir(path.Dir(absPath))
	mfs.files[absPath] = &memoryFile{
		absPath: absPath,
		relPath: mfs.rel(absPath),
		content: content,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(content)),
			mode:    filePerm,
			modTime: mfs.now(),
		},
	}
}

// addDir creates directory entries for dir and its missing parents.
func (mfs *MemoryFileSystem) addDir(dir string) {
	for {
		if _, ok := mfs.files[dir]; ok {
			return
		}
		mfs.files[dir] = &memoryFile{
			absPath: dir,
			relPath: mfs.rel(dir),
			info: &memoryFileInfo{
				name:    path.Base(dir),
				mode:    dirPerm | fs.ModeDir,
				modTime: mfs.now(),
			},
		}
		parent := path.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func (mfs *MemoryFileSystem) entriesUnder(basePath string) []*memoryFile {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	var entries []*memoryFile
	for p, f := range mfs.files {
		if p == basePath || basePath == "/" || strings.HasPrefix(p, basePath+"/") {
			entries = append(entries, f)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].absPath < entries[j].absPath })
	return entries
}
