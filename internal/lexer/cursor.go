package lexer

// Cursor is a read-only position within a tokenized line. Navigation skips
// whitespace tokens; comments and literals are returned like any other token.
type Cursor struct {
	tokens []Token
	pos    int
}

// NewCursor returns a cursor positioned at tokens[pos]
func NewCursor(tokens []Token, pos int) *Cursor {
	return &Cursor{tokens: tokens, pos: pos}
}

// Pos returns the current token index
func (c *Cursor) Pos() int {
	return c.pos
}

// Current returns the token under the cursor
func (c *Cursor) Current() Token {
	return c.tokens[c.pos]
}

// PeekPrev returns the n-th non-whitespace token before the cursor (n >= 1)
func (c *Cursor) PeekPrev(n int) (Token, bool) {
	i := c.pos
	for n > 0 {
		i--
		for i >= 0 && c.tokens[i].Kind == Whitespace {
			i--
		}
		if i < 0 {
			return Token{}, false
		}
		n--
	}
	return c.tokens[i], true
}

// PeekNext returns the n-th non-whitespace token after the cursor (n >= 1)
func (c *Cursor) PeekNext(n int) (Token, bool) {
	i := c.pos
	for n > 0 {
		i++
		for i < len(c.tokens) && c.tokens[i].Kind == Whitespace {
			i++
		}
		if i >= len(c.tokens) {
			return Token{}, false
		}
		n--
	}
	return c.tokens[i], true
}

// NextAdjacent returns the token directly after the cursor without skipping whitespace
func (c *Cursor) NextAdjacent() (Token, bool) {
	if c.pos+1 >= len(c.tokens) {
		return Token{}, false
	}
	return c.tokens[c.pos+1], true
}

// PrevAdjacent returns the token directly before the cursor without skipping whitespace
func (c *Cursor) PrevAdjacent() (Token, bool) {
	if c.pos == 0 {
		return Token{}, false
	}
	return c.tokens[c.pos-1], true
}

// MatchBackwardThrough walks backward from the cursor over tokens accepted by
// through and returns the first token that is not accepted.
func (c *Cursor) MatchBackwardThrough(through func(Token) bool) (Token, bool) {
	for i := c.pos - 1; i >= 0; i-- {
		if !through(c.tokens[i]) {
			return c.tokens[i], true
		}
	}
	return Token{}, false
}

// PrecededBy reports whether the non-whitespace tokens directly before the
// cursor spell out texts, nearest last.
func (c *Cursor) PrecededBy(texts ...string) bool {
	for k := range texts {
		tok, ok := c.PeekPrev(k + 1)
		if !ok || tok.Text != texts[len(texts)-1-k] {
			return false
		}
	}
	return len(texts) > 0
}
