package infra

import (
	"os"
	"path/filepath"
	"strings"

	"propostas/internal/documento"

	"github.com/rs/zerolog/log"
)

// AssetLoader reads images from a base directory into memory so the renderer
// never resolves external URLs.
type AssetLoader struct {
	base string
}

func NewAssetLoader(base string) *AssetLoader {
	abs, err := filepath.Abs(base)
	if err != nil {
		abs = filepath.Clean(base)
	}
	return &AssetLoader{base: abs}
}

var tiposImagem = map[string]string{
	".png":  "PNG",
	".jpg":  "JPG",
	".jpeg": "JPG",
}

// Carregar returns the asset at rel, or nil when it is missing, unreadable,
// of an unsupported type or outside the base directory.
func (l *AssetLoader) Carregar(rel string) *documento.Imagem {
	if rel == "" {
		return nil
	}
	tipo, ok := tiposImagem[strings.ToLower(filepath.Ext(rel))]
	if !ok {
		log.Warn().Str("asset", rel).Msg("assets: unsupported image type")
		return nil
	}

	path := filepath.Join(l.base, filepath.FromSlash(rel))
	if path != l.base && !strings.HasPrefix(path, l.base+string(filepath.Separator)) {
		log.Warn().Str("asset", rel).Msg("assets: path escapes base directory")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("asset", rel).Msg("assets: not loaded")
		return nil
	}
	return &documento.Imagem{Nome: rel, Tipo: tipo, Dados: data}
}
