package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/assetpipe"
	"github.com/meigma/assetpipe/internal/testutil"
	"github.com/meigma/assetpipe/pack"
	"github.com/meigma/assetpipe/plan"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()), errOut.String())
	return out.String()
}

func TestSynthThenLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := run(t, "synth", dir, "--packs", "3", "--meshes", "6", "--textures", "4", "--materials", "2", "--texture-size", "8", "--shared", "0.5")
	assert.Contains(t, out, "wrote 3 packs")

	p, err := plan.Load(filepath.Join(dir, "plan.json"))
	require.NoError(t, err)
	require.Len(t, p.Groups, 3)

	out = run(t, "load", filepath.Join(dir, "plan.json"))
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "request failures 0")
}

func TestSynth_Reproducible(t *testing.T) {
	t.Parallel()

	a, b := t.TempDir(), t.TempDir()
	cfg := synthConfig{packs: 1, meshes: 3, textures: 2, materials: 1, textureSize: 4, shared: 0.5, seed: 9}
	_, err := synthesize(a, cfg)
	require.NoError(t, err)
	_, err = synthesize(b, cfg)
	require.NoError(t, err)

	da, err := os.ReadFile(filepath.Join(a, "pack00.pack"))
	require.NoError(t, err)
	db, err := os.ReadFile(filepath.Join(b, "pack00.pack"))
	require.NoError(t, err)
	assert.Equal(t, da, db)

	_, err = synthesize(t.TempDir(), synthConfig{})
	require.Error(t, err)
}

func TestPackCreateAndList(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "props"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "props", "rock.mesh"), testutil.MeshPayload("rock"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "rock_albedo.tex"), testutil.TexturePayload(t, "rock_albedo", 2, 7), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("hello"), 0o600))

	out := filepath.Join(t.TempDir(), "props.pack")
	assert.Contains(t, run(t, "pack", "create", out, src), "wrote 3 assets")

	p, err := pack.Open(out)
	require.NoError(t, err)
	defer p.Close()

	rock, ok := p.Lookup("props/rock")
	require.True(t, ok)
	assert.Equal(t, assetpipe.KindMesh, rock.Kind)
	tex, ok := p.Lookup("rock_albedo")
	require.True(t, ok)
	assert.Equal(t, assetpipe.KindTexture, tex.Kind)
	notes, ok := p.Lookup("notes")
	require.True(t, ok)
	assert.Equal(t, assetpipe.KindOther, notes.Kind)

	listing := run(t, "pack", "ls", out, "--verify")
	assert.Contains(t, listing, "props/rock")
	assert.Contains(t, listing, "verified 3 assets")
}

func TestPackCreate_ForcedKind(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(src, []byte{1, 2, 3}, 0o600))
	out := filepath.Join(t.TempDir(), "one.pack")
	run(t, "pack", "create", out, src, "--kind", "material")

	p, err := pack.Open(out)
	require.NoError(t, err)
	defer p.Close()
	a, ok := p.Lookup("blob")
	require.True(t, ok)
	assert.Equal(t, assetpipe.KindMaterial, a.Kind)

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"pack", "create", out, src, "--kind", "sound"})
	require.Error(t, root.Execute())
}

func TestDetectKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, assetpipe.KindMesh, detectKind(testutil.MeshPayload("m")))
	assert.Equal(t, assetpipe.KindMaterial, detectKind(testutil.MaterialPayload("m", nil)))
	assert.Equal(t, assetpipe.KindTexture, detectKind(testutil.TexturePayload(t, "t", 1, 0)))
	assert.Equal(t, assetpipe.KindOther, detectKind(nil))
	assert.Equal(t, assetpipe.KindOther, detectKind([]byte{200}))
}
