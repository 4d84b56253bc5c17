package smbclient

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/smbenum/internal/smb/types"
	"github.com/marmos91/smbenum/pkg/auth"
	"github.com/marmos91/smbenum/pkg/locator"
)

func TestShareType(t *testing.T) {
	assert.Equal(t, TypeIPCShare, shareType("IPC$"))
	assert.Equal(t, TypeIPCShare, shareType("ipc$"))
	assert.Equal(t, TypeFileShare, shareType("ADMIN$"))
	assert.Equal(t, TypeFileShare, shareType("public"))
}

func TestObjectType(t *testing.T) {
	assert.Equal(t, TypeDir, objectType(types.FileAttributeDirectory))
	assert.Equal(t, TypeFile, objectType(types.FileAttributeArchive))
	assert.Equal(t, TypeFile, objectType(0))
	assert.Equal(t, TypeLink, objectType(types.FileAttributeReparsePoint|types.FileAttributeDirectory))
}

func TestInferAccess(t *testing.T) {
	t.Run("ReadOnlyFile", func(t *testing.T) {
		mask := inferAccess(types.FileAttributeReadonly)
		assert.Equal(t, types.AccessReadOnly, mask)
		assert.Zero(t, mask&types.FileWriteData)
		assert.Zero(t, mask&types.Delete)
	})

	t.Run("WritableFile", func(t *testing.T) {
		mask := inferAccess(types.FileAttributeArchive)
		assert.Equal(t, types.AccessReadWrite, mask)
		assert.Zero(t, mask&types.FileDeleteChild)
	})

	t.Run("WritableDirectory", func(t *testing.T) {
		mask := inferAccess(types.FileAttributeDirectory)
		assert.NotZero(t, mask&types.FileDeleteChild)
	})
}

func TestSMBPath(t *testing.T) {
	assert.Equal(t, "", smbPath(""))
	assert.Equal(t, `docs\2024\report.pdf`, smbPath("docs/2024/report.pdf"))
}

func TestSMB2Dialer_Dial(t *testing.T) {
	d := NewSMB2Dialer()

	t.Run("Lazy", func(t *testing.T) {
		// Nothing listens on this address; Dial must still succeed since
		// the connection is only opened on first use.
		conn, err := d.Dial(context.Background(), locator.MustParse("smb://192.0.2.1"), DefaultOptions(), auth.Anonymous())
		require.NoError(t, err)
		assert.NoError(t, conn.Close())
	})

	t.Run("UnsupportedScheme", func(t *testing.T) {
		_, err := d.Dial(context.Background(), locator.MustParse("nfs://fs01"), DefaultOptions(), auth.Anonymous())
		assert.Error(t, err)
	})

	t.Run("NoProvider", func(t *testing.T) {
		_, err := d.Dial(context.Background(), locator.MustParse("smb://fs01"), DefaultOptions(), nil)
		assert.Error(t, err)
	})
}

func TestSMB2Conn_UnreachableHost(t *testing.T) {
	// Grab a free port and release it so the connect is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	opts := DefaultOptions()
	opts.Port = port
	opts.DialTimeout = time.Second

	loc := locator.MustParse("smb://127.0.0.1")
	conn, err := NewSMB2Dialer().Dial(context.Background(), loc, opts, auth.Anonymous())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.List(context.Background(), loc)
	require.Error(t, err)
	assert.Equal(t, FailureUnreachable, Classify(err))
}
