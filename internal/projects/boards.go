package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	loginVariableConstant                   = "login"
	titleVariableConstant                   = "title"
	ownerIDVariableConstant                 = "ownerId"
	ownerVariableConstant                   = "owner"
	nameVariableConstant                    = "name"
	repositoryIDVariableConstant            = "repositoryId"
	optionsVariableConstant                 = "options"
	statusFieldVariableConstant             = "statusField"
	defaultOptionColorConstant              = "GRAY"
	alreadyLinkedMessageFragmentConstant    = "already linked"
	ownerNotFoundTemplateConstant           = "repository owner %q not found"
	repositoryNotFoundTemplateConstant      = "repository %s/%s not found"
	boardCreationEmptyMessageConstant       = "createProjectV2 returned no project"
	fieldCreationEmptyMessageConstant       = "createProjectV2Field returned no field"
	ownerBoardsOperationNameConstant        = "owner boards"
	createBoardOperationNameConstant        = "create board"
	repositoryIDOperationNameConstant       = "repository id"
	createFieldOperationNameConstant        = "create field"
	boardItemsOperationNameConstant         = "board items"
	linkRepositoryErrorTemplateConstant     = "unable to link project to repository: %w"
	updateFieldOptionsErrorTemplateConstant = "unable to update options of field %s: %w"
)

var (
	// ErrBoardCreationFailed indicates createProjectV2 succeeded without returning a board.
	ErrBoardCreationFailed = errors.New(boardCreationEmptyMessageConstant)
	// ErrFieldCreationFailed indicates createProjectV2Field succeeded without returning a field.
	ErrFieldCreationFailed = errors.New(fieldCreationEmptyMessageConstant)
)

type optionInput struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type ownerBoardsResponse struct {
	RepositoryOwner *struct {
		ID         string `json:"id"`
		ProjectsV2 struct {
			Nodes []boardNode `json:"nodes"`
		} `json:"projectsV2"`
	} `json:"repositoryOwner"`
}

// OwnerID returns the node identifier of a user or organization login.
func (synchronizer *Synchronizer) OwnerID(executionContext context.Context, ownerLogin string) (string, error) {
	response, queryError := synchronizer.queryOwnerBoards(executionContext, ownerLogin, "")
	if queryError != nil {
		return "", queryError
	}
	return response.RepositoryOwner.ID, nil
}

// FindBoard returns the owner's board whose title matches exactly, searching the first twenty title matches.
func (synchronizer *Synchronizer) FindBoard(executionContext context.Context, ownerLogin string, title string) (Board, bool, error) {
	response, queryError := synchronizer.queryOwnerBoards(executionContext, ownerLogin, title)
	if queryError != nil {
		return Board{}, false, queryError
	}
	for _, node := range response.RepositoryOwner.ProjectsV2.Nodes {
		if node.Title == title {
			return node.toBoard(), true, nil
		}
	}
	return Board{}, false, nil
}

// CreateBoard creates a board owned by ownerID.
func (synchronizer *Synchronizer) CreateBoard(executionContext context.Context, ownerID string, title string) (Board, error) {
	data, executionError := synchronizer.gateway.ExecuteGraphQL(executionContext, createBoardMutationConstant, map[string]any{
		ownerIDVariableConstant: ownerID,
		titleVariableConstant:   title,
	})
	if executionError != nil {
		return Board{}, executionError
	}

	var response struct {
		CreateProjectV2 *struct {
			ProjectV2 *boardNode `json:"projectV2"`
		} `json:"createProjectV2"`
	}
	if decodingError := json.Unmarshal(data, &response); decodingError != nil {
		return Board{}, fmt.Errorf(decodeResponseErrorTemplateConstant, createBoardOperationNameConstant, decodingError)
	}
	if response.CreateProjectV2 == nil || response.CreateProjectV2.ProjectV2 == nil {
		return Board{}, ErrBoardCreationFailed
	}
	return response.CreateProjectV2.ProjectV2.toBoard(), nil
}

// RepositoryID returns the node identifier of owner/name.
func (synchronizer *Synchronizer) RepositoryID(executionContext context.Context, owner string, name string) (string, error) {
	data, executionError := synchronizer.gateway.ExecuteGraphQL(executionContext, repositoryIDQueryConstant, map[string]any{
		ownerVariableConstant: owner,
		nameVariableConstant:  name,
	})
	if executionError != nil {
		return "", executionError
	}

	var response struct {
		Repository *struct {
			ID string `json:"id"`
		} `json:"repository"`
	}
	if decodingError := json.Unmarshal(data, &response); decodingError != nil {
		return "", fmt.Errorf(decodeResponseErrorTemplateConstant, repositoryIDOperationNameConstant, decodingError)
	}
	if response.Repository == nil {
		return "", fmt.Errorf(repositoryNotFoundTemplateConstant, owner, name)
	}
	return response.Repository.ID, nil
}

// LinkRepository links the board to a repository. A board that is already linked is not an error.
func (synchronizer *Synchronizer) LinkRepository(executionContext context.Context, boardID string, repositoryID string) error {
	_, executionError := synchronizer.gateway.ExecuteGraphQL(executionContext, linkRepositoryMutationConstant, map[string]any{
		projectIDVariableConstant:    boardID,
		repositoryIDVariableConstant: repositoryID,
	})
	if executionError == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(executionError.Error()), alreadyLinkedMessageFragmentConstant) {
		return nil
	}
	return fmt.Errorf(linkRepositoryErrorTemplateConstant, executionError)
}

// CreateSingleSelectField adds a single-select field with the given options, all colored gray.
func (synchronizer *Synchronizer) CreateSingleSelectField(executionContext context.Context, boardID string, name string, options []string) (SingleSelectField, error) {
	optionInputs := make([]optionInput, 0, len(options))
	for _, optionName := range options {
		optionInputs = append(optionInputs, optionInput{Name: optionName, Color: defaultOptionColorConstant})
	}

	data, executionError := synchronizer.gateway.ExecuteGraphQL(executionContext, createSingleSelectFieldMutationConstant, map[string]any{
		projectIDVariableConstant: boardID,
		nameVariableConstant:      name,
		optionsVariableConstant:   optionInputs,
	})
	if executionError != nil {
		return SingleSelectField{}, executionError
	}

	var response struct {
		CreateProjectV2Field *struct {
			ProjectV2Field *fieldNode `json:"projectV2Field"`
		} `json:"createProjectV2Field"`
	}
	if decodingError := json.Unmarshal(data, &response); decodingError != nil {
		return SingleSelectField{}, fmt.Errorf(decodeResponseErrorTemplateConstant, createFieldOperationNameConstant, decodingError)
	}
	if response.CreateProjectV2Field == nil || response.CreateProjectV2Field.ProjectV2Field == nil {
		return SingleSelectField{}, ErrFieldCreationFailed
	}

	createdNode := *response.CreateProjectV2Field.ProjectV2Field
	createdNode.TypeName = singleSelectFieldTypeNameConstant
	createdField, _ := createdNode.toField().(SingleSelectField)
	return createdField, nil
}

// AddFieldOptions appends options to a single-select field. Existing options are resent
// unchanged ahead of the new ones so that nothing on the board is removed or recolored.
func (synchronizer *Synchronizer) AddFieldOptions(executionContext context.Context, field SingleSelectField, newOptions []string) error {
	optionInputs := make([]optionInput, 0, len(field.Options)+len(newOptions))
	for _, existingOption := range field.Options {
		color := existingOption.Color
		if len(color) == 0 {
			color = defaultOptionColorConstant
		}
		optionInputs = append(optionInputs, optionInput{Name: existingOption.Name, Color: color, Description: existingOption.Description})
	}
	for _, optionName := range newOptions {
		if _, exists := ResolveOption(field, optionName); exists {
			continue
		}
		optionInputs = append(optionInputs, optionInput{Name: optionName, Color: defaultOptionColorConstant})
	}

	_, executionError := synchronizer.gateway.ExecuteGraphQL(executionContext, updateFieldOptionsMutationConstant, map[string]any{
		fieldIDVariableConstant: field.ID,
		optionsVariableConstant: optionInputs,
	})
	if executionError != nil {
		return fmt.Errorf(updateFieldOptionsErrorTemplateConstant, field.Name, executionError)
	}
	return nil
}

// ListItems returns the first fifty board items with their Status values.
func (synchronizer *Synchronizer) ListItems(executionContext context.Context, boardID string) ([]BoardItem, error) {
	data, executionError := synchronizer.gateway.ExecuteGraphQL(executionContext, boardItemsQueryConstant, map[string]any{
		projectIDVariableConstant:   boardID,
		statusFieldVariableConstant: StatusFieldName,
	})
	if executionError != nil {
		return nil, executionError
	}

	var response struct {
		Node *struct {
			Items struct {
				Nodes []struct {
					ID      string `json:"id"`
					Content *struct {
						TypeName string `json:"__typename"`
						Number   int    `json:"number"`
						Title    string `json:"title"`
						State    string `json:"state"`
					} `json:"content"`
					FieldValueByName *struct {
						Name string `json:"name"`
					} `json:"fieldValueByName"`
				} `json:"nodes"`
			} `json:"items"`
		} `json:"node"`
	}
	if decodingError := json.Unmarshal(data, &response); decodingError != nil {
		return nil, fmt.Errorf(decodeResponseErrorTemplateConstant, boardItemsOperationNameConstant, decodingError)
	}
	if response.Node == nil {
		return nil, nil
	}

	items := make([]BoardItem, 0, len(response.Node.Items.Nodes))
	for _, itemNode := range response.Node.Items.Nodes {
		item := BoardItem{ID: itemNode.ID, ContentType: draftIssueContentTypeNameConstant}
		if itemNode.Content != nil {
			item.ContentType = itemNode.Content.TypeName
			item.Number = itemNode.Content.Number
			item.Title = itemNode.Content.Title
			item.State = strings.ToLower(itemNode.Content.State)
		}
		if itemNode.FieldValueByName != nil {
			item.Status = itemNode.FieldValueByName.Name
		}
		items = append(items, item)
	}
	return items, nil
}

func (synchronizer *Synchronizer) queryOwnerBoards(executionContext context.Context, ownerLogin string, title string) (ownerBoardsResponse, error) {
	data, executionError := synchronizer.gateway.ExecuteGraphQL(executionContext, ownerBoardsQueryConstant, map[string]any{
		loginVariableConstant: ownerLogin,
		titleVariableConstant: title,
	})
	if executionError != nil {
		return ownerBoardsResponse{}, executionError
	}

	var response ownerBoardsResponse
	if decodingError := json.Unmarshal(data, &response); decodingError != nil {
		return ownerBoardsResponse{}, fmt.Errorf(decodeResponseErrorTemplateConstant, ownerBoardsOperationNameConstant, decodingError)
	}
	if response.RepositoryOwner == nil {
		return ownerBoardsResponse{}, fmt.Errorf(ownerNotFoundTemplateConstant, ownerLogin)
	}
	return response, nil
}
