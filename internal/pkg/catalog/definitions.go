package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/lexforge/lexforge/internal/pkg/layout"
)

const footer = "Documento gerado automaticamente - Agnes Benites Advogada"

var standardPrice = decimal.RequireFromString("15.00")

func contractFields() []Field {
	return []Field{
		{ID: "contratante", Label: "Nome do Contratante", Kind: KindText, Required: true, Placeholder: "Nome completo ou razão social"},
		{ID: "contratante_doc", Label: "CPF/CNPJ do Contratante", Kind: KindText, Required: true, Placeholder: "000.000.000-00"},
		{ID: "contratante_endereco", Label: "Endereço do Contratante", Kind: KindText, Placeholder: "Rua, número, cidade - UF"},
		{ID: "contratado", Label: "Nome do Contratado", Kind: KindText, Required: true, Placeholder: "Nome completo ou razão social"},
		{ID: "contratado_doc", Label: "CPF/CNPJ do Contratado", Kind: KindText, Required: true, Placeholder: "00.000.000/0000-00"},
		{ID: "contratado_endereco", Label: "Endereço do Contratado", Kind: KindText, Placeholder: "Rua, número, cidade - UF"},
		{ID: "objeto", Label: "Objeto do Contrato", Kind: KindMultiline, Required: true, Placeholder: "Descreva os serviços contratados"},
		{ID: "valor", Label: "Valor", Kind: KindText, Required: true, Placeholder: "R$ 0,00"},
		{ID: "forma_pagamento", Label: "Forma de Pagamento", Kind: KindText, Required: true, Placeholder: "À vista, parcelado..."},
		{ID: "prazo", Label: "Prazo de Vigência", Kind: KindText, Required: true, Placeholder: "12 meses"},
		{ID: "foro", Label: "Foro", Kind: KindText, Required: true, Placeholder: "São Paulo/SP"},
	}
}

func proposalFields() []Field {
	return []Field{
		{ID: "proponente", Label: "Proponente", Kind: KindText, Required: true, Placeholder: "Sua empresa"},
		{ID: "proponente_doc", Label: "CNPJ/CPF do Proponente", Kind: KindText, Required: true},
		{ID: "cliente", Label: "Cliente", Kind: KindText, Required: true, Placeholder: "Empresa do cliente"},
		{ID: "cliente_doc", Label: "CNPJ/CPF do Cliente", Kind: KindText},
		{ID: "servicos", Label: "Serviços e Produtos", Kind: KindMultiline, Required: true, Placeholder: "Descreva o escopo da proposta"},
		{ID: "valor_total", Label: "Investimento Total", Kind: KindText, Required: true, Placeholder: "R$ 0,00"},
		{ID: "condicoes_pagamento", Label: "Condições de Pagamento", Kind: KindText, Required: true},
		{ID: "prazo_entrega", Label: "Prazo de Entrega", Kind: KindText, Placeholder: "30 dias"},
		{ID: "validade", Label: "Validade da Proposta", Kind: KindText, Required: true, Placeholder: "15 dias"},
	}
}

func style(primary, secondary string, header layout.HeaderStyle, font string) layout.Style {
	return layout.Style{
		Primary:    layout.Hex(primary),
		Secondary:  layout.Hex(secondary),
		Header:     header,
		FontFamily: font,
	}
}

// Builtin returns the template definitions shipped with the service.
func Builtin() []Definition {
	formalContract := layout.DefaultContractWording
	formalContract.Title = "CONTRATO"
	formalContract.Subtitle = "Prestação de Serviços Profissionais"
	formalContract.Parties = "IDENTIFICAÇÃO DAS PARTES"
	formalContract.Object = "OBJETO DO CONTRATO"
	formalContract.Financial = "CONDIÇÕES FINANCEIRAS"
	formalContract.Jurisdiction = "FORO"
	formalContract.NameLabel = "Nome/Razão Social"
	formalContract.ValueLabel = "Valor Total"

	simpleContract := layout.DefaultContractWording
	simpleContract.Parties = "PARTES CONTRATANTES"
	simpleContract.Object = "CLÁUSULA PRIMEIRA - DO OBJETO"
	simpleContract.Financial = "CLÁUSULA SEGUNDA - DAS CONDIÇÕES FINANCEIRAS"
	simpleContract.Jurisdiction = "CLÁUSULA TERCEIRA - DO FORO"
	simpleContract.ValueLabel = "2.1. Valor"
	simpleContract.PaymentLabel = "2.2. Pagamento"
	simpleContract.TermLabel = "2.3. Vigência"
	simpleContract.ForumClause = "Fica eleito o foro da comarca de %s para dirimir quaisquer dúvidas ou controvérsias oriundas deste contrato."

	blueProposal := layout.ProposalWording{Title: "PROPOSTA DE SERVIÇOS", Services: "DESCRIÇÃO DOS SERVIÇOS"}
	simpleProposal := layout.ProposalWording{Title: "PROPOSTA", Services: "ESCOPO"}
	corporateProposal := layout.ProposalWording{Title: "PROPOSTA CORPORATIVA", Services: "SOLUÇÃO PROPOSTA"}

	defs := []Definition{
		{
			ID: "contrato-moderno", Name: "Contrato Moderno Azul", Description: "Contrato profissional com design azul moderno",
			Category: CategoryContract, BasePrice: standardPrice, Fields: contractFields(), Color: "#003d7a",
			Style:  style("#003d7a", "#0066cc", layout.HeaderModern, "Roboto"),
			Layout: layout.Contract(layout.DefaultContractWording),
		},
		{
			ID: "contrato-dourado", Name: "Contrato Dourado Luxo", Description: "Contrato elegante com detalhes dourados",
			Category: CategoryContract, BasePrice: standardPrice, Fields: contractFields(), Color: "#d4af37",
			Style:  style("#d4af37", "#1a1a1a", layout.HeaderFormal, ""),
			Layout: layout.Contract(formalContract),
		},
		{
			ID: "contrato-simples", Name: "Contrato Simples", Description: "Contrato clean e profissional sem muitos detalhes",
			Category: CategoryContract, BasePrice: standardPrice, Fields: contractFields(), Color: "#2c3e50",
			Footer: "Agnes Benites Advogada - OAB/SP 541.659",
			Style:  style("#2c3e50", "#7f8c8d", layout.HeaderClean, ""),
			Layout: layout.Contract(simpleContract),
		},
		{
			ID: "contrato-laranja-bege", Name: "Contrato Laranja e Bege", Description: "Contrato com tons quentes e acolhedores",
			Category: CategoryContract, BasePrice: standardPrice, Fields: contractFields(), Color: "#f4a261",
			Style:  style("#f4a261", "#8d6e63", layout.HeaderModern, "Roboto"),
			Layout: layout.Contract(layout.DefaultContractWording),
		},
		{
			ID: "proposta-verde", Name: "Proposta Verde", Description: "Proposta comercial com design verde vibrante",
			Category: CategoryProposal, BasePrice: standardPrice, Fields: proposalFields(), Color: "#27ae60",
			Style:  style("#27ae60", "#1e8449", layout.HeaderModern, ""),
			Layout: layout.Proposal(layout.DefaultProposalWording),
		},
		{
			ID: "proposta-azul", Name: "Proposta Azul Moderna", Description: "Proposta clean com visual corporativo azul",
			Category: CategoryProposal, BasePrice: standardPrice, Fields: proposalFields(), Color: "#1e3a8a",
			Style:  style("#1e3a8a", "#3b82f6", layout.HeaderModern, "Roboto"),
			Layout: layout.Proposal(blueProposal),
		},
		{
			ID: "proposta-verde-simples", Name: "Proposta Verde Simples", Description: "Proposta objetiva com design verde clean",
			Category: CategoryProposal, BasePrice: standardPrice, Fields: proposalFields(), Color: "#2d8659",
			Style:  style("#2d8659", "#52b788", layout.HeaderClean, ""),
			Layout: layout.Proposal(simpleProposal),
		},
		{
			ID: "proposta-laranja", Name: "Proposta Corporate Laranja", Description: "Proposta vibrante para empresas modernas",
			Category: CategoryProposal, BasePrice: standardPrice, Fields: proposalFields(), Color: "#ff8c42",
			Style:  style("#ff8c42", "#333333", layout.HeaderFormal, "Roboto"),
			Layout: layout.Proposal(corporateProposal),
		},
	}
	for i := range defs {
		if defs[i].Footer == "" {
			defs[i].Footer = footer
		}
	}
	return defs
}

// Default builds the registry of built-in templates.
func Default() *Registry {
	r, err := NewRegistry(Builtin()...)
	if err != nil {
		panic(err)
	}
	return r
}

// FontFamilies lists the external font families referenced by defs.
func FontFamilies(defs []Definition) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range defs {
		if f := d.Style.FontFamily; f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
