package projects

import (
	"encoding/json"
	"strings"
)

const (
	singleSelectFieldTypeNameConstant  = "ProjectV2SingleSelectField"
	issueContentTypeNameConstant       = "Issue"
	pullRequestContentTypeNameConstant = "PullRequest"
	draftIssueContentTypeNameConstant  = "DraftIssue"
	repositoryNameSeparatorConstant    = "/"
)

// Board describes a Projects v2 board.
type Board struct {
	ID                 string
	Number             int
	Title              string
	Closed             bool
	URL                string
	LinkedRepositories []string
}

// IsLinkedTo reports whether owner/name appears among the board's linked repositories.
func (board Board) IsLinkedTo(owner string, name string) bool {
	fullName := owner + repositoryNameSeparatorConstant + name
	for _, linkedRepository := range board.LinkedRepositories {
		if strings.EqualFold(linkedRepository, fullName) {
			return true
		}
	}
	return false
}

// Field is a board field: either a PlainField or a SingleSelectField.
type Field interface {
	FieldID() string
	FieldName() string
}

// PlainField is any board field without selectable options.
type PlainField struct {
	ID       string
	Name     string
	DataType string
}

// FieldID returns the field node identifier.
func (field PlainField) FieldID() string {
	return field.ID
}

// FieldName returns the field display name.
func (field PlainField) FieldName() string {
	return field.Name
}

// SingleSelectField is a board field whose value is chosen from an ordered option set.
type SingleSelectField struct {
	ID      string
	Name    string
	Options []FieldOption
}

// FieldID returns the field node identifier.
func (field SingleSelectField) FieldID() string {
	return field.ID
}

// FieldName returns the field display name.
func (field SingleSelectField) FieldName() string {
	return field.Name
}

// OptionNames lists the option names in board order.
func (field SingleSelectField) OptionNames() []string {
	names := make([]string, 0, len(field.Options))
	for _, option := range field.Options {
		names = append(names, option.Name)
	}
	return names
}

// MissingOptions returns the desired option names absent from the field, compared case-insensitively.
func (field SingleSelectField) MissingOptions(desiredOptions []string) []string {
	var missing []string
	for _, desiredOption := range desiredOptions {
		if _, found := ResolveOption(field, desiredOption); !found {
			missing = append(missing, desiredOption)
		}
	}
	return missing
}

// FieldOption is one option of a single-select field.
type FieldOption struct {
	ID          string
	Name        string
	Color       string
	Description string
}

// BoardItem is a board entry together with its content summary and Status value.
type BoardItem struct {
	ID          string
	ContentType string
	Number      int
	Title       string
	State       string
	Status      string
}

// IsPullRequest reports whether the item wraps a pull request.
func (item BoardItem) IsPullRequest() bool {
	return item.ContentType == pullRequestContentTypeNameConstant
}

type fieldNode struct {
	TypeName string           `json:"__typename"`
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	DataType string           `json:"dataType"`
	Options  []fieldOptionNode `json:"options"`
}

type fieldOptionNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type boardNode struct {
	ID           string `json:"id"`
	Number       int    `json:"number"`
	Title        string `json:"title"`
	Closed       bool   `json:"closed"`
	URL          string `json:"url"`
	Repositories struct {
		Nodes []struct {
			NameWithOwner string `json:"nameWithOwner"`
		} `json:"nodes"`
	} `json:"repositories"`
}

func (node boardNode) toBoard() Board {
	board := Board{ID: node.ID, Number: node.Number, Title: node.Title, Closed: node.Closed, URL: node.URL}
	for _, repositoryNode := range node.Repositories.Nodes {
		board.LinkedRepositories = append(board.LinkedRepositories, repositoryNode.NameWithOwner)
	}
	return board
}

func (node fieldNode) toField() Field {
	if node.TypeName != singleSelectFieldTypeNameConstant {
		return PlainField{ID: node.ID, Name: node.Name, DataType: node.DataType}
	}

	options := make([]FieldOption, 0, len(node.Options))
	for _, option := range node.Options {
		options = append(options, FieldOption{
			ID:          option.ID,
			Name:        option.Name,
			Color:       option.Color,
			Description: option.Description,
		})
	}
	return SingleSelectField{ID: node.ID, Name: node.Name, Options: options}
}

func decodeFieldNodes(rawNodes []json.RawMessage) ([]Field, error) {
	fields := make([]Field, 0, len(rawNodes))
	for _, rawNode := range rawNodes {
		var node fieldNode
		if decodingError := json.Unmarshal(rawNode, &node); decodingError != nil {
			return nil, decodingError
		}
		if len(strings.TrimSpace(node.ID)) == 0 {
			continue
		}
		fields = append(fields, node.toField())
	}
	return fields, nil
}
