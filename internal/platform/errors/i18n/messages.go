package i18n

import "golang.org/x/text/language"

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidPageToken    = "INVALID_PAGE_TOKEN"
	CodeDiceInvalidSides    = "DICE_INVALID_SIDES"
	CodeDiceInvalidCount    = "DICE_INVALID_COUNT"
	CodeDiceInvalidNotation = "DICE_INVALID_NOTATION"
	CodeDiceNullPointer     = "DICE_NULL_POINTER"
	CodeDiceCountTooLarge   = "DICE_COUNT_TOO_LARGE"
	CodeSeedOutOfRange      = "SEED_OUT_OF_RANGE"
	CodeNotFound            = "NOT_FOUND"
)

var builtinMessages = map[language.Tag]map[Code]string{
	language.AmericanEnglish: {
		CodeInvalidRequest:      "Invalid request: {{.Reason}}",
		CodeInvalidPageToken:    "The page token is not valid",
		CodeDiceInvalidSides:    "A die needs at least one side, got {{.Sides}}",
		CodeDiceInvalidCount:    "At least one die must be rolled, got {{.Count}}",
		CodeDiceInvalidNotation: "\"{{.Notation}}\" is not valid dice notation (expected something like 3d6+5)",
		CodeDiceNullPointer:     "The {{.Field}} field is required",
		CodeDiceCountTooLarge:   "Cannot roll {{.Count}} dice at once (limit {{.Max}})",
		CodeSeedOutOfRange:      "The seed must be an unsigned 64-bit integer",
		CodeNotFound:            "{{.Resource}} not found",
	},
	language.BrazilianPortuguese: {
		CodeInvalidRequest:      "Requisição inválida: {{.Reason}}",
		CodeInvalidPageToken:    "O token de página não é válido",
		CodeDiceInvalidSides:    "Um dado precisa de pelo menos um lado, recebido {{.Sides}}",
		CodeDiceInvalidCount:    "É preciso rolar pelo menos um dado, recebido {{.Count}}",
		CodeDiceInvalidNotation: "\"{{.Notation}}\" não é uma notação de dados válida (exemplo: 3d6+5)",
		CodeDiceNullPointer:     "O campo {{.Field}} é obrigatório",
		CodeDiceCountTooLarge:   "Não é possível rolar {{.Count}} dados de uma vez (limite {{.Max}})",
		CodeSeedOutOfRange:      "A semente deve ser um inteiro sem sinal de 64 bits",
		CodeNotFound:            "{{.Resource}} não encontrado",
	},
}
