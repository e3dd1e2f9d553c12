package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/viewtouch/posk/internal/poserr"
)

// BackupFile moves path to path+".bak", overwriting any existing backup. It
// is a no-op (returns nil) if path does not exist yet. Call this before
// writing a fresh copy of path so that a crash mid-write leaves either the
// prior version (in path.bak) or the new one, never a truncated new file
// (spec §5, §8).
func BackupFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: stat %s: %v", poserr.ErrIO, path, err)
	}

	bak := path + ".bak"
	if err := os.Rename(path, bak); err != nil {
		return fmt.Errorf("%w: backup %s: %v", poserr.ErrIO, path, err)
	}
	return nil
}

// AtomicWrite implements the copy-then-rename pattern described in spec §5:
// BackupFile(path) first, then the new content is written to a temp file
// in the same directory, fsynced, and renamed over path. write receives an
// *OutputDataFile already positioned past the version header.
func AtomicWrite(path string, version int32, write func(*OutputDataFile) error) (err error) {
	if err := BackupFile(path); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", poserr.ErrIO, path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	out, oerr := NewOutputDataFile(tmp, version)
	if oerr != nil {
		tmp.Close()
		return oerr
	}
	if werr := write(out); werr != nil {
		tmp.Close()
		return werr
	}
	if ferr := out.Flush(); ferr != nil {
		tmp.Close()
		return ferr
	}
	if serr := tmp.Sync(); serr != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", poserr.ErrIO, tmpName, serr)
	}
	if cerr := tmp.Close(); cerr != nil {
		return fmt.Errorf("%w: close %s: %v", poserr.ErrIO, tmpName, cerr)
	}
	if rerr := os.Rename(tmpName, path); rerr != nil {
		return fmt.Errorf("%w: rename %s -> %s: %v", poserr.ErrIO, tmpName, path, rerr)
	}
	return nil
}

// ReadVersioned opens path and hands an *InputDataFile to read. Returns
// poserr.ErrIO wrapped if the file cannot be opened (including "does not
// exist", which callers typically treat as "nothing saved yet").
func ReadVersioned(path string, read func(*InputDataFile) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", poserr.ErrIO, path, err)
	}
	defer f.Close()

	in, err := NewInputDataFile(f)
	if err != nil {
		return err
	}
	return read(in)
}
