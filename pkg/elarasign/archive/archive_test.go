package archive_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elarasign/elarasign/pkg/elarasign/archive"
	"github.com/elarasign/elarasign/pkg/elarasign/archive/bundle"
	_ "github.com/elarasign/elarasign/pkg/elarasign/archive/compress"
)

func TestBuildExportBundleTarGzRoundTrips(t *testing.T) {
	payload := []byte("signed image bytes, pretend PNG data here")
	tarOp := bundle.NewTarOperation("image.png")

	out, err := archive.BuildExportBundle(payload, "image.png", "tar.gz", tarOp)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	gz, err := archive.Get(archive.OpGzip)
	require.NoError(t, err)
	tarred, err := gz.Reverse(out)
	require.NoError(t, err)

	recovered, err := tarOp.Reverse(tarred)
	require.NoError(t, err)
	require.Equal(t, payload, recovered)
}

func TestBuildExportBundleTarBz2RoundTrips(t *testing.T) {
	payload := []byte("another bundle payload for bzip2")
	tarOp := bundle.NewTarOperation("image.jpg")

	out, err := archive.BuildExportBundle(payload, "image.jpg", "tar.bz2", tarOp)
	require.NoError(t, err)

	bz2, err := archive.Get(archive.OpBzip2)
	require.NoError(t, err)
	tarred, err := bz2.Reverse(out)
	require.NoError(t, err)

	recovered, err := tarOp.Reverse(tarred)
	require.NoError(t, err)
	require.Equal(t, payload, recovered)
}

func TestChainForFormatRejectsUnknown(t *testing.T) {
	_, err := archive.ChainForFormat("tar.zstd-but-not-really")
	require.Error(t, err)
}

func TestChainForFormatResolvesKnownFormats(t *testing.T) {
	chain, err := archive.ChainForFormat("tar.bz2")
	require.NoError(t, err)
	require.Equal(t, []uint8{archive.OpTar, archive.OpBzip2}, chain)
}
