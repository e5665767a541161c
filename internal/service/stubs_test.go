package service_test

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"propostas/internal/documento"
	"propostas/internal/dto"
	"propostas/internal/model"
	"propostas/internal/repository"
	"propostas/internal/worker"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type chaveSequencia struct {
	prefixo string
	ano     int
}

// stubSequenciaRepo keeps one counter per (prefixo, ano).
type stubSequenciaRepo struct {
	contadores map[chaveSequencia]int
}

func newStubSequenciaRepo() *stubSequenciaRepo {
	return &stubSequenciaRepo{contadores: make(map[chaveSequencia]int)}
}

func (r *stubSequenciaRepo) Proximo(_ context.Context, _ *gorm.DB, prefixo string, ano int) (int, error) {
	k := chaveSequencia{prefixo, ano}
	r.contadores[k]++
	return r.contadores[k], nil
}

var _ repository.SequenciaRepository = (*stubSequenciaRepo)(nil)

// stubCatalogo is an in-memory CatalogoRepository.
type stubCatalogo struct {
	gases       map[int64]*model.TipoGas
	capacidades map[int64]*model.Capacidade
	medidas     map[int64]*model.UnidadeMedida
	condicoes   map[int64]*model.CondicaoPagamento
}

func newStubCatalogo() *stubCatalogo {
	return &stubCatalogo{
		gases: map[int64]*model.TipoGas{
			1: {ID: 1, Nome: "OXIGÊNIO INDUSTRIAL", Tipo: "cilindro", Ativo: true},
			2: {ID: 2, Nome: "CO2 LÍQUIDO", Tipo: "liquido", Ativo: true},
			3: {ID: 3, Nome: "NITROGÊNIO", Tipo: "ambos", Ativo: true},
		},
		capacidades: map[int64]*model.Capacidade{
			1: {ID: 1, Tamanho: "10 m³", Ativo: true},
			2: {ID: 2, Tamanho: "45 kg", Ativo: true},
		},
		medidas: map[int64]*model.UnidadeMedida{
			1: {ID: 1, Nome: "m³", Sigla: "m³", Ativo: true},
			2: {ID: 2, Nome: "Kg", Sigla: "kg", Ativo: true},
		},
		condicoes: map[int64]*model.CondicaoPagamento{
			1: {ID: 1, Descricao: "Nota Fiscal / Boleto 14 dias", Dias: 14, Ativo: true},
		},
	}
}

func achar[T any](m map[int64]*T, id int64) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (c *stubCatalogo) FindTipoGas(_ context.Context, id int64) (*model.TipoGas, error) {
	return achar(c.gases, id)
}
func (c *stubCatalogo) FindCapacidade(_ context.Context, id int64) (*model.Capacidade, error) {
	return achar(c.capacidades, id)
}
func (c *stubCatalogo) FindUnidadeMedida(_ context.Context, id int64) (*model.UnidadeMedida, error) {
	return achar(c.medidas, id)
}
func (c *stubCatalogo) FindCondicaoPagamento(_ context.Context, id int64) (*model.CondicaoPagamento, error) {
	return achar(c.condicoes, id)
}

func listar[T any](m map[int64]*T, keep func(*T) bool) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if keep(m[id]) {
			out = append(out, *m[id])
		}
	}
	return out
}

func (c *stubCatalogo) ListTiposGas(_ context.Context, tipo model.TipoProposta) ([]model.TipoGas, error) {
	return listar(c.gases, func(g *model.TipoGas) bool {
		return g.Ativo && (tipo == "" || g.AtendeTipo(tipo))
	}), nil
}
func (c *stubCatalogo) ListCapacidades(_ context.Context) ([]model.Capacidade, error) {
	return listar(c.capacidades, func(v *model.Capacidade) bool { return v.Ativo }), nil
}
func (c *stubCatalogo) ListUnidadesMedida(_ context.Context) ([]model.UnidadeMedida, error) {
	return listar(c.medidas, func(v *model.UnidadeMedida) bool { return v.Ativo }), nil
}
func (c *stubCatalogo) ListCondicoesPagamento(_ context.Context) ([]model.CondicaoPagamento, error) {
	return listar(c.condicoes, func(v *model.CondicaoPagamento) bool { return v.Ativo }), nil
}
func (c *stubCatalogo) Seed(_ context.Context, _ any) error { return nil }

var _ repository.CatalogoRepository = (*stubCatalogo)(nil)

// stubUnidadeRepo serves a fixed set of branches.
type stubUnidadeRepo struct {
	unidades map[int64]*model.Unidade
}

func ptr[T any](v T) *T { return &v }

func newStubUnidadeRepo() *stubUnidadeRepo {
	return &stubUnidadeRepo{unidades: map[int64]*model.Unidade{
		1: {ID: 1, Nome: "Joaçaba/SC", RazaoSocial: ptr("MaqGases Joaçaba Ltda"), Telefone: ptr("(49) 3522-0000"), Ativo: true},
		2: {ID: 2, Nome: "Palhoça/SC", Ativo: true},
		3: {ID: 3, Nome: "Érechim/RS", Ativo: false},
		4: {ID: 4, Nome: "Joaçabinha/SC", Ativo: true},
	}}
}

func (r *stubUnidadeRepo) FindByID(_ context.Context, id int64) (*model.Unidade, error) {
	return achar(r.unidades, id)
}
func (r *stubUnidadeRepo) FindByNome(_ context.Context, nome string) (*model.Unidade, error) {
	for _, u := range r.unidades {
		if u.Nome == nome {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (r *stubUnidadeRepo) ListAtivas(_ context.Context) ([]model.Unidade, error) {
	return listar(r.unidades, func(u *model.Unidade) bool { return u.Ativo }), nil
}
func (r *stubUnidadeRepo) Save(_ context.Context, u *model.Unidade) error {
	r.unidades[u.ID] = u
	return nil
}

var _ repository.UnidadeRepository = (*stubUnidadeRepo)(nil)

// stubUsuarioRepo serves a fixed set of users.
type stubUsuarioRepo struct {
	usuarios map[int64]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: map[int64]*model.Usuario{
		10: {ID: 10, Nome: "Ana Vendas", Email: "ana@maqgases.com.br", Role: model.RoleUnidade, UnidadeID: ptr(int64(1)), Ativo: true},
		20: {ID: 20, Nome: "Bruno Palhoça", Email: "bruno@maqgases.com.br", Role: model.RoleUnidade, UnidadeID: ptr(int64(2)), Ativo: true},
		30: {ID: 30, Nome: "Administrador", Email: "admin@maqgases.com.br", Role: model.RoleSuperadmin, Ativo: true},
		40: {ID: 40, Nome: "Inativo", Email: "inativo@maqgases.com.br", Role: model.RoleUnidade, UnidadeID: ptr(int64(1)), Ativo: false},
	}}
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if strings.EqualFold(u.Email, email) && u.Ativo {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (r *stubUsuarioRepo) FindByID(_ context.Context, id int64) (*model.Usuario, error) {
	return achar(r.usuarios, id)
}
func (r *stubUsuarioRepo) Upsert(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// stubPropostaRepo is an in-memory PropostaRepository.
type stubPropostaRepo struct {
	propostas map[int64]*model.Proposta
	itens     map[int64][]model.PropostaItem
	seq       int64
	itemSeq   int64
	agora     time.Time
	// falharItem makes CreateItem fail for the given ordem.
	falharItem *int
}

func newStubPropostaRepo() *stubPropostaRepo {
	return &stubPropostaRepo{
		propostas: make(map[int64]*model.Proposta),
		itens:     make(map[int64][]model.PropostaItem),
		agora:     time.Date(2025, 3, 14, 13, 0, 0, 0, time.UTC),
	}
}

func (r *stubPropostaRepo) Create(_ context.Context, _ *gorm.DB, p *model.Proposta) error {
	// Mirrors the unique index on numero, reported as gorm translates it.
	for _, existente := range r.propostas {
		if existente.Numero == p.Numero {
			return gorm.ErrDuplicatedKey
		}
	}
	r.seq++
	p.ID = r.seq
	p.CreatedAt = r.agora
	cp := *p
	cp.Itens = nil
	r.propostas[p.ID] = &cp
	return nil
}

func (r *stubPropostaRepo) CreateItem(_ context.Context, _ *gorm.DB, it *model.PropostaItem) error {
	if r.falharItem != nil && *r.falharItem == it.Ordem {
		return gorm.ErrInvalidData
	}
	r.itemSeq++
	it.ID = r.itemSeq
	r.itens[it.PropostaID] = append(r.itens[it.PropostaID], *it)
	return nil
}

func (r *stubPropostaRepo) UpdateTotais(_ context.Context, _ *gorm.DB, id int64, subtotal, total decimal.Decimal, locacaoTotal decimal.NullDecimal) error {
	p, ok := r.propostas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.SubtotalItens, p.ValorTotal, p.LocacaoValorTotal = subtotal, total, locacaoTotal
	return nil
}

func (r *stubPropostaRepo) FindByID(_ context.Context, id int64) (*model.Proposta, error) {
	p, ok := r.propostas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Itens = append([]model.PropostaItem(nil), r.itens[id]...)
	return &cp, nil
}

func (r *stubPropostaRepo) List(_ context.Context, f dto.PropostaFilter, unidadeID *int64) ([]model.Proposta, int64, error) {
	var out []model.Proposta
	for id := r.seq; id >= 1; id-- {
		p, ok := r.propostas[id]
		if !ok {
			continue
		}
		if unidadeID != nil && p.UnidadeID != *unidadeID {
			continue
		}
		if f.Tipo != "" && string(p.Tipo) != f.Tipo {
			continue
		}
		if f.Status != "" && string(p.Status) != f.Status {
			continue
		}
		if f.Busca != "" && !strings.Contains(strings.ToLower(p.ClienteNome+" "+p.Numero), strings.ToLower(f.Busca)) {
			continue
		}
		out = append(out, *p)
	}
	total := int64(len(out))
	ini := (f.Page - 1) * f.Limit
	if ini > len(out) {
		ini = len(out)
	}
	fim := ini + f.Limit
	if fim > len(out) {
		fim = len(out)
	}
	return out[ini:fim], total, nil
}

func (r *stubPropostaRepo) Delete(_ context.Context, id int64) error {
	delete(r.propostas, id)
	delete(r.itens, id)
	return nil
}

func (r *stubPropostaRepo) MarcarEnviada(_ context.Context, id int64, para string, em time.Time) (int64, error) {
	p, ok := r.propostas[id]
	if !ok || p.Status != model.StatusGerada {
		return 0, nil
	}
	p.Status = model.StatusEnviada
	p.EnviadaPara = &para
	p.EnviadaEm = &em
	return 1, nil
}

func (r *stubPropostaRepo) DB() *gorm.DB { return nil }

var _ repository.PropostaRepository = (*stubPropostaRepo)(nil)

// stubFila records enqueued delivery jobs.
type stubFila struct {
	jobs []worker.EnvioPayload
}

func (f *stubFila) EnqueueEnvio(_ context.Context, p worker.EnvioPayload) (string, error) {
	f.jobs = append(f.jobs, p)
	return "job-1", nil
}

// stubRender writes a fixed marker and records the model it got.
type stubRender struct {
	ultimo *documento.Modelo
}

func (r *stubRender) Renderizar(w io.Writer, m *documento.Modelo) error {
	r.ultimo = m
	_, err := io.WriteString(w, "%PDF-stub "+m.Numero)
	return err
}

// stubAssets returns a tiny image for every known name.
type stubAssets struct {
	pedidos []string
}

func (a *stubAssets) Carregar(rel string) *documento.Imagem {
	a.pedidos = append(a.pedidos, rel)
	if rel == "" {
		return nil
	}
	return &documento.Imagem{Nome: rel, Tipo: "PNG", Dados: []byte{0x89, 'P', 'N', 'G'}}
}
