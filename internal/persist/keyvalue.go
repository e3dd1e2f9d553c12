package persist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viewtouch/posk/internal/poserr"
)

// KeyValueFile is a simple `key=value` store used for license/config data,
// and the backing format for the sectioned INI overlays (tax.ini, fees.ini,
// fastfood.ini) described in spec §6: each file is sectioned
// `[Sales Tax Canada]` with `GST=8.2500` style entries below it.
type KeyValueFile struct {
	// sections preserves insertion order of section names; "" is the
	// implicit top-level section for files with no [Section] headers.
	order    []string
	sections map[string]map[string]string
}

// NewKeyValueFile returns an empty KeyValueFile.
func NewKeyValueFile() *KeyValueFile {
	return &KeyValueFile{sections: map[string]map[string]string{}}
}

func (kv *KeyValueFile) ensureSection(name string) map[string]string {
	if _, ok := kv.sections[name]; !ok {
		kv.sections[name] = map[string]string{}
		kv.order = append(kv.order, name)
	}
	return kv.sections[name]
}

// Set stores a value under section ("" for top-level).
func (kv *KeyValueFile) Set(section, key, value string) {
	kv.ensureSection(section)[key] = value
}

// Get retrieves a value, ok=false if absent.
func (kv *KeyValueFile) Get(section, key string) (string, bool) {
	m, ok := kv.sections[section]
	if !ok {
		return "", false
	}
	v, ok := m[key]
	return v, ok
}

// Section returns the key/value map for a section, or nil if it doesn't
// exist. Callers must not mutate the returned map.
func (kv *KeyValueFile) Section(name string) map[string]string {
	return kv.sections[name]
}

// LoadKeyValueFile parses path in the sectioned INI format. Missing files
// return a wrapped poserr.ErrIO so callers can distinguish "not configured
// yet" from a genuine parse failure.
func LoadKeyValueFile(path string) (*KeyValueFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", poserr.ErrIO, path, err)
	}
	defer f.Close()

	kv := NewKeyValueFile()
	section := ""
	kv.ensureSection(section)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			kv.ensureSection(section)
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		kv.Set(section, key, val)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan %s: %v", poserr.ErrIO, path, err)
	}
	return kv, nil
}

// Save writes kv back out in sectioned INI format, in section-insertion
// order with keys sorted for a deterministic diff.
func (kv *KeyValueFile) Save(path string) error {
	var b strings.Builder
	for _, section := range kv.order {
		if section != "" {
			fmt.Fprintf(&b, "[%s]\n", section)
		}
		keys := make([]string, 0, len(kv.sections[section]))
		for k := range kv.sections[section] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s=%s\n", k, kv.sections[section][k])
		}
		b.WriteByte('\n')
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "kv.tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", poserr.ErrIO, path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", poserr.ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close temp for %s: %v", poserr.ErrIO, path, err)
	}
	if err := BackupFile(path); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename %s -> %s: %v", poserr.ErrIO, tmpName, path, err)
	}
	return nil
}
