package persist

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataFileRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	out, err := NewOutputDataFile(&buf, 106)
	require.NoError(t, err)
	out.WriteInt32(42)
	out.WriteStr("dine-in")
	out.WriteFlt(8.25)
	require.NoError(t, out.Flush())

	in, err := NewInputDataFile(&buf)
	require.NoError(t, err)
	require.EqualValues(t, 106, in.Version())
	require.EqualValues(t, 42, in.ReadInt32())
	require.Equal(t, "dine-in", in.ReadStr())
	require.Equal(t, 8.25, in.ReadFlt())
	require.NoError(t, in.Err())
}

func TestAtomicWriteThenReadVersioned(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "check_1.dat")

	err := AtomicWrite(path, 3, func(o *OutputDataFile) error {
		o.WriteInt32(7)
		return nil
	})
	require.NoError(t, err)

	var got int32
	err = ReadVersioned(path, func(in *InputDataFile) error {
		got = in.ReadInt32()
		return in.Err()
	})
	require.NoError(t, err)
	require.EqualValues(t, 7, got)
}

func TestBackupFilePreservesPriorVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.dat")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))

	require.NoError(t, BackupFile(path))
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o600))

	bak, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	require.Equal(t, "v1", string(bak))

	cur, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "v2", string(cur))
}

func TestKeyValueFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tax.ini")

	kv := NewKeyValueFile()
	kv.Set("Sales Tax Canada", "GST", "5.0000")
	kv.Set("Sales Tax Canada", "PST", "7.0000")
	require.NoError(t, kv.Save(path))

	loaded, err := LoadKeyValueFile(path)
	require.NoError(t, err)
	v, ok := loaded.Get("Sales Tax Canada", "GST")
	require.True(t, ok)
	require.Equal(t, "5.0000", v)
}
