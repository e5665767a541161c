package dto

type TipoGasResponse struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
	Tipo string `json:"tipo"`
}

type CapacidadeResponse struct {
	ID      int64  `json:"id"`
	Tamanho string `json:"tamanho"`
}

type UnidadeMedidaResponse struct {
	ID    int64  `json:"id"`
	Nome  string `json:"nome"`
	Sigla string `json:"sigla"`
}

type CondicaoPagamentoResponse struct {
	ID        int64  `json:"id"`
	Descricao string `json:"descricao"`
	Dias      int    `json:"dias"`
}

// CatalogosResponse feeds the item step of the client wizard.
type CatalogosResponse struct {
	TiposGas           []TipoGasResponse           `json:"tiposGas"`
	Capacidades        []CapacidadeResponse        `json:"capacidades"`
	UnidadesMedida     []UnidadeMedidaResponse     `json:"unidadesMedida"`
	CondicoesPagamento []CondicaoPagamentoResponse `json:"condicoesPagamento"`
}
