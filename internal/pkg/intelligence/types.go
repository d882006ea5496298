package intelligence

// Parties named in an analysed document.
type Parties struct {
	Contratante string   `json:"contratante,omitempty"`
	Contratado  string   `json:"contratado,omitempty"`
	Outras      []string `json:"outras,omitempty"`
}

type Clause struct {
	Numero    string `json:"numero,omitempty"`
	Titulo    string `json:"titulo"`
	Conteudo  string `json:"conteudo"`
	Categoria string `json:"categoria,omitempty"`
}

type Risk struct {
	Clausula string `json:"clausula"`
	Problema string `json:"problema"`
	Risco    string `json:"risco"`
}

// Analysis is the structured reading of an uploaded document.
type Analysis struct {
	Tipo                   string   `json:"tipo"`
	Partes                 Parties  `json:"partes"`
	Objeto                 string   `json:"objeto,omitempty"`
	Valor                  string   `json:"valor,omitempty"`
	Prazo                  string   `json:"prazo,omitempty"`
	ClausulasIdentificadas []Clause `json:"clausulas_identificadas,omitempty"`
	ClausulasProblematicas []Risk   `json:"clausulas_problematicas,omitempty"`
	PontosAtencao          []string `json:"pontos_atencao,omitempty"`
	Resumo                 string   `json:"resumo"`
}

// Change is one proposed edit.
type Change struct {
	Tipo            string `json:"tipo" validate:"required,oneof=adicao remocao alteracao"`
	ClausulaAfetada string `json:"clausula_afetada"`
	TextoOriginal   string `json:"texto_original,omitempty"`
	TextoSugerido   string `json:"texto_sugerido"`
	Justificativa   string `json:"justificativa,omitempty"`
	Impacto         string `json:"impacto,omitempty"`
	Prioridade      string `json:"prioridade,omitempty"`
}

type Suggestions struct {
	Sugestoes                       []Change `json:"sugestoes"`
	ClausulasAdicionaisRecomendadas []Clause `json:"clausulas_adicionais_recomendadas,omitempty"`
	Alertas                         []string `json:"alertas,omitempty"`
	ResumoMudancas                  string   `json:"resumo_mudancas,omitempty"`
}

// Applied is a document after changes were merged in.
type Applied struct {
	Texto      string   `json:"texto"`
	Alteracoes []string `json:"alteracoes,omitempty"`
}

type ClauseVariant struct {
	Nome  string `json:"nome"`
	Texto string `json:"texto"`
}

type GeneratedClause struct {
	Titulo      string          `json:"titulo"`
	Texto       string          `json:"texto"`
	Variantes   []ClauseVariant `json:"variantes,omitempty"`
	Observacoes string          `json:"observacoes,omitempty"`
}
