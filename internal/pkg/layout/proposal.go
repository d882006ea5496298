package layout

// ProposalWording is the text that differs between proposal templates.
type ProposalWording struct {
	Title    string
	Subtitle string
	Services string
}

// DefaultProposalWording is used when a template does not override it.
var DefaultProposalWording = ProposalWording{
	Title:    "PROPOSTA COMERCIAL",
	Services: "SERVIÇOS E PRODUTOS PROPOSTOS",
}

// Proposal returns a layout for a commercial proposal signed by the proponent.
func Proposal(w ProposalWording) Func {
	return func(d *Document, v Values) {
		subtitle := w.Subtitle
		if subtitle == "" {
			subtitle = "Proposta gerada em " + ShortDate(d.IssuedAt())
		}
		d.Header(w.Title, subtitle)

		d.Panel("PROPONENTE", v.Get("proponente"), "CNPJ/CPF: "+v.Get("proponente_doc"))
		d.Space(15)
		d.Panel("CLIENTE", v.Get("cliente"), "CNPJ/CPF: "+v.Get("cliente_doc"))
		d.Space(20)

		d.Section(w.Services)
		d.Paragraph(v.Get("servicos"))
		d.Space(20)

		d.Highlight("INVESTIMENTO TOTAL", v.Get("valor_total"))
		d.Space(20)

		d.Label("Condições de Pagamento:")
		d.Line(0, v.Get("condicoes_pagamento"))
		d.Space(10)
		d.Label("Prazo de Entrega:")
		d.Line(0, v.Get("prazo_entrega"))
		d.Space(10)
		d.Label("Validade da Proposta:")
		d.Line(0, v.Get("validade"))
		d.Space(20)

		d.SignatureBlock("São Paulo",
			Signatory{Role: "Assinatura do Proponente", Name: v.Or("proponente", "")},
			Signatory{Role: "De acordo do Cliente", Name: v.Or("cliente", "")},
		)
	}
}
