package ltcheck

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// LoginArgs identify a languagetool.org account for the personal
// dictionary endpoints.
type LoginArgs struct {
	Username string `json:"username" validate:"required"`
	APIKey   string `json:"apiKey" validate:"required"`
}

// ParseWord reports whether v is a valid dictionary word: non-empty and
// free of whitespace (no phrases).
func ParseWord(v string) error {
	if v != "" && !strings.ContainsAny(v, " \t\n") {
		return nil
	}
	return errors.New("ltcheck: a word must be non-empty and contain no whitespace")
}

// WordsRequest lists words from the user's personal dictionaries.
type WordsRequest struct {
	Login LoginArgs `validate:"required"`
	// Offset into the word list, defaults to 0.
	Offset int
	// Limit on returned words, defaults to 10 server-side.
	Limit int
	// Dicts restricts the listing to the named dictionaries.
	Dicts []string
}

// WordsResponse is the served word listing.
type WordsResponse struct {
	Words []string `json:"words"`
}

// WordsAddRequest adds one word to a personal dictionary.
type WordsAddRequest struct {
	// Word to add; must not be a phrase.
	Word  string    `validate:"required"`
	Login LoginArgs `validate:"required"`
	// Dict names the target dictionary; non-existent dictionaries are
	// created, unset means the default dictionary.
	Dict string
}

// WordsAddResponse reports whether the word was added.
type WordsAddResponse struct {
	Added bool `json:"added"`
}

// WordsDeleteRequest removes one word from a personal dictionary.
type WordsDeleteRequest struct {
	Word  string    `validate:"required"`
	Login LoginArgs `validate:"required"`
	Dict  string
}

// WordsDeleteResponse reports whether the word was removed.
type WordsDeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// Words lists words from the user's personal dictionaries.
func (c *ServerClient) Words(ctx context.Context, req WordsRequest) (WordsResponse, error) {
	if err := validate.Struct(req); err != nil {
		return WordsResponse{}, err
	}
	q := url.Values{}
	q.Set("username", req.Login.Username)
	q.Set("apiKey", req.Login.APIKey)
	if req.Offset > 0 {
		q.Set("offset", strconv.Itoa(req.Offset))
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if len(req.Dicts) > 0 {
		q.Set("dicts", strings.Join(req.Dicts, ","))
	}

	var resp WordsResponse
	if err := c.get(ctx, "/words", q, &resp); err != nil {
		return WordsResponse{}, err
	}
	return resp, nil
}

// WordsAdd adds a word to one of the user's personal dictionaries.
func (c *ServerClient) WordsAdd(ctx context.Context, req WordsAddRequest) (WordsAddResponse, error) {
	if err := ParseWord(req.Word); err != nil {
		return WordsAddResponse{}, err
	}
	if err := validate.Struct(req); err != nil {
		return WordsAddResponse{}, err
	}
	var resp WordsAddResponse
	if err := c.postForm(ctx, "/words/add", wordForm(req.Word, req.Login, req.Dict), &resp); err != nil {
		return WordsAddResponse{}, err
	}
	return resp, nil
}

// WordsDelete removes a word from one of the user's personal dictionaries.
func (c *ServerClient) WordsDelete(ctx context.Context, req WordsDeleteRequest) (WordsDeleteResponse, error) {
	if err := ParseWord(req.Word); err != nil {
		return WordsDeleteResponse{}, err
	}
	if err := validate.Struct(req); err != nil {
		return WordsDeleteResponse{}, err
	}
	var resp WordsDeleteResponse
	if err := c.postForm(ctx, "/words/delete", wordForm(req.Word, req.Login, req.Dict), &resp); err != nil {
		return WordsDeleteResponse{}, err
	}
	return resp, nil
}

func wordForm(word string, login LoginArgs, dict string) url.Values {
	form := url.Values{}
	form.Set("word", word)
	form.Set("username", login.Username)
	form.Set("apiKey", login.APIKey)
	if dict != "" {
		form.Set("dict", dict)
	}
	return form
}
