package prompt

// Template names, one per stage.
const (
	ConceptTemplate       = "concept.md"
	WordSelectionTemplate = "word_selection.md"
	AssemblyTemplate      = "assembly.md"
)

// builtinTemplates maps template filename to content.
var builtinTemplates = map[string]string{
	ConceptTemplate:       conceptTemplate,
	WordSelectionTemplate: wordSelectionTemplate,
	AssemblyTemplate:      assemblyTemplate,
}

const conceptTemplate = `# Concept: word puzzle

You are brainstorming a word puzzle for The Puzzle Network.

## Request
{{description}}
{{#if theme}}
Requested theme: {{theme}}
{{/if}}
{{#if game_type}}
Requested game type: {{game_type}}
{{/if}}
Difficulty: {{difficulty}}
Target audience: {{audience}}
{{#if theme_keywords}}
Theme keywords found in the request: {{theme_keywords}}
{{/if}}

## Instructions
1. Pick a clear theme for the game
2. Choose one game type from: {{game_types}}
3. Propose {{word_count}} words that fit the theme
4. Every word must be {{min_length}}-{{max_length}} letters, letters only, no repeats
5. Mix easy, medium and hard words

## Output
Respond with a single JSON object:
{"theme": "...", "game_type": "...", "words": ["..."], "reasoning": "why these words work together"}
`

const wordSelectionTemplate = `# Word selection: {{theme}}

You are refining the word list for a {{game_type}} game about "{{theme}}".

## Candidate words
{{candidates}}

## Criteria
- Between {{min_words}} and {{max_words}} words, target {{word_count}}
- Each word {{min_length}}-{{max_length}} letters, letters only
- No duplicates or near-duplicates
- Every word must fit the theme
- Keep the difficulty mix balanced
{{#if difficulty_balance}}
- Target difficulty mix: {{difficulty_balance}}
{{/if}}

## Output
Respond with a single JSON object:
{"words": ["..."], "notes": "what you changed and why"}
`

const assemblyTemplate = `# Assembly: {{title}}

You are writing presentation notes for a finished {{game_type}} game.

Theme: {{theme}}
Difficulty: {{difficulty}}
Words: {{words}}

## Quality standards
- Content quality score at least {{content_threshold}}
- Theme consistency score at least {{theme_threshold}}
- Overall quality at least {{overall_threshold}}

## Output
Respond with a single JSON object:
{"notes": "two or three sentences introducing the game to players"}
`
