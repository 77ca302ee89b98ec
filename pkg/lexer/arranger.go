package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Word is a piece of source text with the 1-based column it starts at.
type Word struct {
	Text string
	Col  int
}

// SplitWords splits a line on whitespace, recording where each word starts.
func SplitWords(line string) []Word {
	var words []Word
	start := -1
	for i, r := range line {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, Word{Text: line[start:i], Col: start + 1})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, Word{Text: line[start:], Col: start + 1})
	}
	return words
}

// Arranger breaks whitespace-delimited words into atomic pieces. Pending
// words live on a reversed stack so that popping yields them left to right;
// pieces split off a word are pushed back in front of the rest of the line.
type Arranger struct {
	stack   []Word
	special []string
}

// NewArranger creates an Arranger that splits words around the given
// special character sequences.
func NewArranger(special []string) *Arranger {
	return &Arranger{special: append([]string(nil), special...)}
}

// SetStack replaces the pending words with words, given in source order.
func (a *Arranger) SetStack(words []Word) {
	a.stack = a.stack[:0]
	for i := len(words) - 1; i >= 0; i-- {
		a.stack = append(a.stack, words[i])
	}
}

// Empty reports whether no words are pending.
func (a *Arranger) Empty() bool {
	return len(a.stack) == 0
}

// Clear discards every pending word.
func (a *Arranger) Clear() {
	a.stack = a.stack[:0]
}

// Pop removes and returns the next pending word.
func (a *Arranger) Pop() (Word, bool) {
	if len(a.stack) == 0 {
		return Word{}, false
	}
	w := a.stack[len(a.stack)-1]
	a.stack = a.stack[:len(a.stack)-1]
	return w, true
}

func (a *Arranger) push(w Word) {
	a.stack = append(a.stack, w)
}

// Arrange returns the first atomic piece of w, pushing whatever follows it
// back onto the stack. A piece that opens a string literal absorbs the
// following words, joined by single spaces, up to the closing quote. The
// result may be empty when w starts with a special character that has
// already been pushed.
func (a *Arranger) Arrange(w Word) (Word, error) {
	if strings.HasPrefix(w.Text, `"`) {
		return a.arrangeString(w)
	}
	return a.separate(w), nil
}

// separate splits w at its leftmost special character. A quote in the middle
// of the word ends the prefix so that string contents are never split.
func (a *Arranger) separate(w Word) Word {
	if utf8.RuneCountInString(w.Text) <= 1 || a.isSpecial(w.Text) {
		return w
	}

	idx, sc := a.firstSpecial(w.Text)
	if q := strings.IndexByte(w.Text, '"'); q > 0 && (idx < 0 || q < idx) {
		a.push(Word{Text: w.Text[q:], Col: w.Col + q})
		return a.separate(Word{Text: w.Text[:q], Col: w.Col})
	}
	if idx < 0 {
		return w
	}

	if rest := w.Text[idx+len(sc):]; rest != "" {
		a.push(Word{Text: rest, Col: w.Col + idx + len(sc)})
	}
	a.push(Word{Text: sc, Col: w.Col + idx})
	return a.separate(Word{Text: w.Text[:idx], Col: w.Col})
}

// firstSpecial finds the leftmost special character in text. When several
// start at the same index the one listed first wins.
func (a *Arranger) firstSpecial(text string) (int, string) {
	best, found := -1, ""
	for _, sc := range a.special {
		if i := strings.Index(text, sc); i >= 0 && (best < 0 || i < best) {
			best, found = i, sc
		}
	}
	return best, found
}

func (a *Arranger) isSpecial(text string) bool {
	for _, sc := range a.special {
		if text == sc {
			return true
		}
	}
	return false
}

// arrangeString reassembles a string literal that whitespace splitting
// fragmented. Text after the closing quote goes back on the stack.
func (a *Arranger) arrangeString(w Word) (Word, error) {
	buf := w.Text
	last := w // the word most recently joined into buf
	lastStart := 0
	for {
		if end := strings.IndexByte(buf[1:], '"'); end >= 0 {
			end++ // index of the closing quote in buf
			if rest := buf[end+1:]; rest != "" {
				a.push(Word{Text: rest, Col: last.Col + end + 1 - lastStart})
			}
			return Word{Text: buf[:end+1], Col: w.Col}, nil
		}
		next, ok := a.Pop()
		if !ok {
			return Word{Text: buf, Col: w.Col}, ErrUnterminatedString
		}
		lastStart = len(buf) + 1
		last = next
		buf += " " + next.Text
	}
}
