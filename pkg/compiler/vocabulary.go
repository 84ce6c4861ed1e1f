package compiler

import "fmt"

// baseKeywords are recognized by every grammar.
var baseKeywords = map[string]TokenType{
	"Let":        LET,
	"Set":        SET,
	"be":         BE,
	"to":         TO,
	"as":         AS,
	"If":         IF,
	"Otherwise":  OTHERWISE,
	"For":        FOR,
	"each":       EACH,
	"in":         IN,
	"Process":    PROCESS,
	"called":     CALLED,
	"that":       THAT,
	"takes":      TAKES,
	"Return":     RETURN,
	"Display":    DISPLAY,
	"with":       WITH,
	"Define":     DEFINE,
	"containing": CONTAINING,
	"at":         AT,
	"is":         IS,
	"plus":       PLUS,
	"minus":      MINUS,
	"modulo":     MODULO,
	"and":        AND,
	"or":         OR,
	"not":        NOT,
	"True":       TRUE,
	"False":      FALSE,
}

// phrase is a multi-word operator. The lexer tries phrases longest first.
type phrase struct {
	words []string
	tt    TokenType
}

// phrases is keyed by the first word of each phrase, longest phrase first.
var phrases = map[string][]phrase{
	"greater": {
		{words: []string{"greater", "than", "or", "equal", "to"}, tt: GREATER_EQUAL},
		{words: []string{"greater", "than"}, tt: GREATER},
	},
	"less": {
		{words: []string{"less", "than", "or", "equal", "to"}, tt: LESS_EQUAL},
		{words: []string{"less", "than"}, tt: LESS},
	},
	"not": {
		{words: []string{"not", "equal", "to"}, tt: NOT_EQUAL},
	},
	"equal": {
		{words: []string{"equal", "to"}, tt: EQUAL},
	},
	"multiplied": {
		{words: []string{"multiplied", "by"}, tt: MULTIPLIED},
	},
	"divided": {
		{words: []string{"divided", "by"}, tt: DIVIDED},
	},
}

// Vocabulary maps source words to keyword token types.
type Vocabulary struct {
	words map[string]TokenType
}

// NewVocabulary returns a vocabulary holding the base keywords.
func NewVocabulary() *Vocabulary {
	v := &Vocabulary{words: make(map[string]TokenType, len(baseKeywords))}
	for w, tt := range baseKeywords {
		v.words[w] = tt
	}
	return v
}

// Add registers word as a keyword. Registering a word twice with different
// token types is an error.
func (v *Vocabulary) Add(word string, tt TokenType) error {
	if existing, ok := v.words[word]; ok && existing != tt {
		return fmt.Errorf("keyword %q already registered as %s", word, existing)
	}
	v.words[word] = tt
	return nil
}

// Lookup returns the keyword type of word.
func (v *Vocabulary) Lookup(word string) (TokenType, bool) {
	tt, ok := v.words[word]
	return tt, ok
}

// Len returns the number of registered keywords.
func (v *Vocabulary) Len() int {
	return len(v.words)
}
