package repo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/html/charset"
	"gopkg.in/yaml.v3"

	"github.com/htol/booksapi/book"
)

var seedJSON = jsoniter.ConfigCompatibleWithStandardLibrary

const byteOrderMark = '\uFEFF'

// seedContentType makes UTF-8 the default; a byte order mark still wins
const seedContentType = "text/plain; charset=utf-8"

// LoadSeed reads a list of books from a .json, .yaml or .yml file.
// Files are read as UTF-8 unless a byte order mark names another
// encoding.
func LoadSeed(path string) ([]book.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	return DecodeSeed(f, filepath.Ext(path))
}

// DecodeSeed decodes books from r. ext selects the format and defaults
// to JSON.
func DecodeSeed(r io.Reader, ext string) ([]book.Book, error) {
	utf8Reader, err := charset.NewReader(r, seedContentType)
	if err != nil {
		return nil, fmt.Errorf("detect seed encoding: %w", err)
	}

	br := bufio.NewReader(utf8Reader)
	if r, _, err := br.ReadRune(); err == nil && r != byteOrderMark {
		_ = br.UnreadRune()
	}

	var books []book.Book
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(br).Decode(&books)
	default:
		err = seedJSON.NewDecoder(br).Decode(&books)
	}
	if err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return books, nil
}
