package sentence

// Tuple holds the converted values of one input line, in column order. A
// column may contribute several values.
type Tuple []string

// Sentence is a maximal run of non-blank lines of an input file. It has at
// least one token.
type Sentence struct {
	// Source is the file (or reader name) the sentence was read from.
	Source string `json:"source"`

	// Line is the 1-based line number of the first token.
	Line int `json:"line"`

	// Index is the position of the sentence in the parsed input, counted
	// across files, starting at 0.
	// Sentences dropped because of malformed lines keep their index.
	Index int `json:"index"`

	Tokens []Tuple `json:"tokens"`
}

// Len is the number of tokens.
func (s Sentence) Len() int { return len(s.Tokens) }

// Field returns the value at tuple position pos for every token. Tokens
// without that position yield "".
func (s Sentence) Field(pos int) []string {
	out := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		if pos >= 0 && pos < len(t) {
			out[i] = t[pos]
		}
	}

	return out
}

// Corpus is a collection of Sentences
type Corpus []Sentence

// Tokens returns the total number of tokens.
func (c Corpus) Tokens() int {
	n := 0
	for _, s := range c {
		n += len(s.Tokens)
	}

	return n
}
