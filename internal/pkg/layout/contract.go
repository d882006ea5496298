package layout

import "fmt"

// ContractWording is the text that differs between contract templates.
type ContractWording struct {
	Title        string
	Subtitle     string
	Parties      string
	Object       string
	Financial    string
	Jurisdiction string
	NameLabel    string
	ValueLabel   string
	PaymentLabel string
	TermLabel    string
	ForumClause  string
}

// DefaultContractWording is used by the modern contract templates.
var DefaultContractWording = ContractWording{
	Title:        "CONTRATO DE PRESTAÇÃO DE SERVIÇOS",
	Parties:      "1. IDENTIFICAÇÃO DAS PARTES",
	Object:       "2. OBJETO DO CONTRATO",
	Financial:    "3. CONDIÇÕES FINANCEIRAS",
	Jurisdiction: "4. FORO",
	NameLabel:    "Nome",
	ValueLabel:   "Valor do Contrato",
	PaymentLabel: "Forma de Pagamento",
	TermLabel:    "Prazo de Vigência",
	ForumClause:  "Fica eleito o foro de %s para dirimir quaisquer questões oriundas do presente contrato.",
}

// Contract returns a layout for a two party service contract.
func Contract(w ContractWording) Func {
	return func(d *Document, v Values) {
		subtitle := w.Subtitle
		if subtitle == "" {
			subtitle = "Documento gerado em " + ShortDate(d.IssuedAt())
		}
		d.Header(w.Title, subtitle)

		d.Section(w.Parties)
		party(d, w, "CONTRATANTE:", v, "contratante")
		d.Space(10)
		party(d, w, "CONTRATADO:", v, "contratado")
		d.Space(20)

		d.Section(w.Object)
		d.Paragraph(v.Get("objeto"))
		d.Space(20)

		d.Section(w.Financial)
		d.Line(0, fmt.Sprintf("%s: %s", w.ValueLabel, v.Get("valor")))
		d.Line(0, fmt.Sprintf("%s: %s", w.PaymentLabel, v.Get("forma_pagamento")))
		d.Line(0, fmt.Sprintf("%s: %s", w.TermLabel, v.Get("prazo")))
		d.Space(20)

		d.Section(w.Jurisdiction)
		d.Paragraph(fmt.Sprintf(w.ForumClause, v.Get("foro")))
		d.Space(20)

		d.SignatureBlock(v.Or("foro", "São Paulo"),
			Signatory{Role: "CONTRATANTE", Name: v.Or("contratante", "")},
			Signatory{Role: "CONTRATADO", Name: v.Or("contratado", "")},
		)
	}
}

func party(d *Document, w ContractWording, label string, v Values, prefix string) {
	d.Label(label)
	d.Line(20, fmt.Sprintf("%s: %s", w.NameLabel, v.Get(prefix)))
	d.Line(20, "CPF/CNPJ: "+v.Get(prefix+"_doc"))
	d.Line(20, "Endereço: "+v.Get(prefix+"_endereco"))
}
