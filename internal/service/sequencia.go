package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"propostas/internal/apierror"
	"propostas/internal/model"
	"propostas/internal/repository"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// AlocadorSequencia issues proposal numbers "<PREFIXO>-<ANO>-<NNNNN>",
// one counter per prefix per calendar year. "Joaçaba/SC" and
// "Joaçabinha/SC" both draw from JOA.
type AlocadorSequencia struct {
	repo  repository.SequenciaRepository
	loc   *time.Location
	agora func() time.Time
}

func NewAlocadorSequencia(repo repository.SequenciaRepository, loc *time.Location) *AlocadorSequencia {
	if loc == nil {
		loc = time.UTC
	}
	return &AlocadorSequencia{repo: repo, loc: loc, agora: time.Now}
}

// Alocar bumps the prefix counter inside tx and formats the number.
func (a *AlocadorSequencia) Alocar(ctx context.Context, tx *gorm.DB, unidade *model.Unidade) (string, error) {
	if unidade == nil || unidade.ID == 0 {
		return "", fmt.Errorf("alocar número: unidade: %w", apierror.ErrReferenceNotFound)
	}
	prefixo := PrefixoUnidade(unidade.Nome)
	ano := a.agora().In(a.loc).Year()
	seq, err := a.repo.Proximo(ctx, tx, prefixo, ano)
	if err != nil {
		return "", fmt.Errorf("alocar número: %w", err)
	}
	return FormatarNumero(prefixo, ano, seq), nil
}

func FormatarNumero(prefixo string, ano, seq int) string {
	return fmt.Sprintf("%s-%d-%05d", prefixo, ano, seq)
}

var semAcentos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// PrefixoUnidade takes the first three letters of the branch name with
// diacritics folded: "Joaçaba/SC" → "JOA", "Érechim" → "ERE".
func PrefixoUnidade(nome string) string {
	limpo, _, err := transform.String(semAcentos, nome)
	if err != nil {
		limpo = nome
	}
	var b strings.Builder
	for _, r := range limpo {
		if b.Len() == 3 {
			break
		}
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	if b.Len() == 0 {
		return "UNI"
	}
	return b.String()
}
