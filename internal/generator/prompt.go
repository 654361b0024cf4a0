package generator

import "fmt"

const promptTemplate = `Você é um assistente especializado em criar personagens para o RPG Ordem Paranormal.

Contexto da campanha:
%s

Crie um NPC (personagem não-jogador) coerente com esse contexto e baseado no seguinte tema: "%s"

Retorne APENAS um JSON válido com exatamente estes campos (sem markdown, sem blocos de código, sem texto adicional):
{
  "name": "Nome do Personagem",
  "origin": "Origem (ex: Acadêmico, Agente de Saúde, etc)",
  "nex": número entre 0 e 99,
  "agi": número entre 0 e 5,
  "for": número entre 0 e 5,
  "int": número entre 0 e 5,
  "pre": número entre 0 e 5,
  "vig": número entre 0 e 5,
  "highlight_skill": "Nome de uma perícia de destaque",
  "dark_secret": "Um segredo obscuro relacionado ao paranormal ou ao passado do personagem"
}

IMPORTANTE: Retorne APENAS o objeto JSON, sem explicações e sem nenhum outro campo.`

// BuildPrompt embeds the campaign context and the theme into the generation
// instructions.
func BuildPrompt(campaignContext, theme string) string {
	return fmt.Sprintf(promptTemplate, campaignContext, theme)
}
