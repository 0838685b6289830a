package commands

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meigma/assetpipe"
	"github.com/meigma/assetpipe/codec"
	"github.com/meigma/assetpipe/pack"
	"github.com/meigma/assetpipe/plan"
)

// synthConfig sizes a synthetic asset set.
type synthConfig struct {
	packs       int
	meshes      int
	textures    int
	materials   int
	textureSize int
	shared      float64
	seed        uint64
}

func newSynthCmd(a *app) *cobra.Command {
	cfg := synthConfig{}
	cmd := &cobra.Command{
		Use:   "synth DIR",
		Short: "Generate synthetic packs and a plan that loads them",
		Long: `Generate synthetic packs in DIR together with DIR/plan.json.

A share of the assets in every pack reuses payloads from a common pool, so
runs exercise content sharing across containers. Output is reproducible for
a given --seed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := synthesize(args[0], cfg)
			if err != nil {
				return err
			}
			a.logger.Info("synthetic packs written", "dir", args[0], "packs", len(p.Groups))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d packs and %s\n", cfg.packs, filepath.Join(args[0], "plan.json"))
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.packs, "packs", 4, "number of packs")
	cmd.Flags().IntVar(&cfg.meshes, "meshes", 24, "meshes per pack")
	cmd.Flags().IntVar(&cfg.textures, "textures", 12, "textures per pack")
	cmd.Flags().IntVar(&cfg.materials, "materials", 6, "materials per pack")
	cmd.Flags().IntVar(&cfg.textureSize, "texture-size", 64, "texture edge length in pixels")
	cmd.Flags().Float64Var(&cfg.shared, "shared", 0.3, "fraction of assets drawn from the shared pool")
	cmd.Flags().Uint64Var(&cfg.seed, "seed", 1, "random seed")
	return cmd
}

// synthesize writes cfg.packs packs into dir and a plan covering all of
// them, returning the plan.
func synthesize(dir string, cfg synthConfig) (*plan.Plan, error) {
	if cfg.packs <= 0 {
		return nil, errors.New("need at least one pack")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // output directory is meant to be shared
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15)) //nolint:gosec // reproducible synthetic data
	pool := synthPool{
		meshes:   make(map[int][]byte),
		textures: make(map[int][]byte),
	}

	out := &plan.Plan{}
	for i := range cfg.packs {
		var inputs []pack.Input
		for j := range cfg.textures {
			data, err := pool.texture(rng, cfg, i, j)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, pack.Input{Name: fmt.Sprintf("tex%03d", j), Kind: assetpipe.KindTexture, Data: data})
		}
		for j := range cfg.meshes {
			inputs = append(inputs, pack.Input{Name: fmt.Sprintf("mesh%03d", j), Kind: assetpipe.KindMesh, Data: pool.mesh(rng, cfg, i, j)})
		}
		for j := range cfg.materials {
			textures := map[string]string{"_MainTex": fmt.Sprintf("tex%03d", j%max(cfg.textures, 1))}
			data := codec.EncodeMaterial(&codec.MaterialData{
				Name:     fmt.Sprintf("mat%03d", j),
				Shader:   "Standard",
				Colors:   map[string]codec.Color{"_Color": {rng.Float32(), rng.Float32(), rng.Float32(), 1}},
				Floats:   map[string]float32{"_Glossiness": rng.Float32()},
				Textures: textures,
			})
			inputs = append(inputs, pack.Input{Name: fmt.Sprintf("mat%03d", j), Kind: assetpipe.KindMaterial, Data: data})
		}

		path := filepath.Join(dir, fmt.Sprintf("pack%02d.pack", i))
		if err := pack.Create(path, inputs); err != nil {
			return nil, err
		}
		out.Groups = append(out.Groups, plan.Group{Container: path})
	}

	if err := plan.Save(filepath.Join(dir, "plan.json"), out); err != nil {
		return nil, err
	}
	return out, nil
}

// synthPool hands out payloads, reusing pooled ones for a cfg.shared
// fraction of requests.
type synthPool struct {
	meshes   map[int][]byte
	textures map[int][]byte
}

func (s *synthPool) mesh(rng *rand.Rand, cfg synthConfig, packIdx, idx int) []byte {
	if rng.Float64() < cfg.shared {
		if data, ok := s.meshes[idx]; ok {
			return data
		}
		data := synthMesh(rng, fmt.Sprintf("shared_mesh%03d", idx))
		s.meshes[idx] = data
		return data
	}
	return synthMesh(rng, fmt.Sprintf("pack%02d_mesh%03d", packIdx, idx))
}

func (s *synthPool) texture(rng *rand.Rand, cfg synthConfig, packIdx, idx int) ([]byte, error) {
	if rng.Float64() < cfg.shared {
		if data, ok := s.textures[idx]; ok {
			return data, nil
		}
		data, err := synthTexture(rng, fmt.Sprintf("shared_tex%03d", idx), cfg.textureSize)
		if err != nil {
			return nil, err
		}
		s.textures[idx] = data
		return data, nil
	}
	return synthTexture(rng, fmt.Sprintf("pack%02d_tex%03d", packIdx, idx), cfg.textureSize)
}

func synthMesh(rng *rand.Rand, name string) []byte {
	n := 3 * (1 + rng.IntN(64))
	m := &codec.MeshData{
		Name:      name,
		Vertices:  make([]codec.Vec3, n),
		UV:        make([]codec.Vec2, n),
		Normals:   make([]codec.Vec3, n),
		SubMeshes: [][]int32{make([]int32, n)},
	}
	for i := range n {
		m.Vertices[i] = codec.Vec3{rng.Float32(), rng.Float32(), rng.Float32()}
		m.UV[i] = codec.Vec2{rng.Float32(), rng.Float32()}
		m.Normals[i] = codec.Vec3{0, 0, 1}
		m.SubMeshes[0][i] = int32(i) //nolint:gosec // n is small
	}
	return codec.EncodeMesh(m)
}

func synthTexture(rng *rand.Rand, name string, size int) ([]byte, error) {
	pixels := make([]byte, size*size*4)
	fill := byte(rng.IntN(256))
	for i := range pixels {
		pixels[i] = fill
	}
	return codec.EncodeTexture(&codec.TextureData{
		Name:   name,
		Pixels: pixels,
		Width:  size,
		Height: size,
		Format: codec.FormatRGBA32,
		Mipmap: true,
	})
}
