package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	// StatusFieldName is the board field the workflow moves items through.
	StatusFieldName = "Status"

	projectIDVariableConstant                  = "projectId"
	itemIDVariableConstant                     = "itemId"
	fieldIDVariableConstant                    = "fieldId"
	optionIDVariableConstant                   = "optionId"
	contentIDVariableConstant                  = "contentId"
	gatewayNotConfiguredMessageConstant        = "graphql gateway not configured"
	fieldNotFoundMessageConstant               = "project field not found"
	fieldNotFoundErrorTemplateConstant         = "%w: %s"
	fieldNotSingleSelectTemplateConstant       = "project field %q is not a single-select field"
	missingAddedItemMessageConstant            = "addProjectV2ItemById returned no item"
	decodeResponseErrorTemplateConstant        = "unable to decode %s response: %w"
	fieldsOperationNameConstant                = "project fields"
	contentItemsOperationNameConstant          = "content project items"
	addItemOperationNameConstant               = "add project item"
	statusFieldMissingTemplateConstant         = "%s field not found in project.\n"
	statusFieldNotSingleSelectTemplateConstant = "%s field in project is not a single-select field.\n"
	statusOptionMissingTemplateConstant        = "Status '%s' not found in project options.\n"
	statusUpdatedTemplateConstant              = "Set item status to '%s'\n"
	statusUpdateFailedTemplateConstant         = "Failed to set status: %v\n"
	statusUpdateFailedLogMessageConstant       = "project item status update failed"
	statusUpdatedLogMessageConstant            = "project item status updated"
	logFieldProjectIDConstant                  = "project_id"
	logFieldItemIDConstant                     = "item_id"
	logFieldStatusConstant                     = "status"
	logFieldReasonConstant                     = "reason"
	reasonFieldMissingConstant                 = "field_missing"
	reasonFieldNotSingleSelectConstant         = "field_not_single_select"
	reasonOptionMissingConstant                = "option_missing"
	reasonMutationFailedConstant               = "mutation_failed"
	reasonFieldLookupFailedConstant            = "field_lookup_failed"
)

var (
	// ErrGatewayNotConfigured indicates the synchronizer was constructed without a gateway.
	ErrGatewayNotConfigured = errors.New(gatewayNotConfiguredMessageConstant)
	// ErrFieldNotFound indicates the board has no field with the requested name among its first twenty fields.
	ErrFieldNotFound = errors.New(fieldNotFoundMessageConstant)
	// ErrMissingAddedItem indicates the add-item mutation succeeded without returning an item.
	ErrMissingAddedItem = errors.New(missingAddedItemMessageConstant)
)

// GraphQLGateway executes GraphQL documents and returns the decoded data payload.
type GraphQLGateway interface {
	ExecuteGraphQL(executionContext context.Context, document string, variables map[string]any) (json.RawMessage, error)
}

// FieldNotSingleSelectError indicates a field lookup found a field without options.
type FieldNotSingleSelectError struct {
	FieldName string
}

// Error describes the field kind mismatch.
func (fieldError FieldNotSingleSelectError) Error() string {
	return fmt.Sprintf(fieldNotSingleSelectTemplateConstant, fieldError.FieldName)
}

// Synchronizer reads and updates board fields and items through the GraphQL gateway.
type Synchronizer struct {
	gateway GraphQLGateway
	output  io.Writer
	logger  *zap.Logger
}

// NewSynchronizer constructs a Synchronizer. Console messages go to output.
func NewSynchronizer(gateway GraphQLGateway, output io.Writer, logger *zap.Logger) (*Synchronizer, error) {
	if gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	if output == nil {
		output = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{gateway: gateway, output: output, logger: logger}, nil
}

// ListFields returns the first twenty fields of a board. Boards with more fields lose the rest.
func (synchronizer *Synchronizer) ListFields(executionContext context.Context, boardID string) ([]Field, error) {
	data, executionError := synchronizer.gateway.ExecuteGraphQL(executionContext, boardFieldsQueryConstant, map[string]any{
		projectIDVariableConstant: boardID,
	})
	if executionError != nil {
		return nil, executionError
	}

	var response struct {
		Node *struct {
			Fields struct {
				Nodes []json.RawMessage `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}
	if decodingError := json.Unmarshal(data, &response); decodingError != nil {
		return nil, fmt.Errorf(decodeResponseErrorTemplateConstant, fieldsOperationNameConstant, decodingError)
	}
	if response.Node == nil {
		return nil, nil
	}

	fields, decodingError := decodeFieldNodes(response.Node.Fields.Nodes)
	if decodingError != nil {
		return nil, fmt.Errorf(decodeResponseErrorTemplateConstant, fieldsOperationNameConstant, decodingError)
	}
	return fields, nil
}

// LocateField returns the first board field whose name matches exactly.
func (synchronizer *Synchronizer) LocateField(executionContext context.Context, boardID string, fieldName string) (Field, error) {
	fields, listError := synchronizer.ListFields(executionContext, boardID)
	if listError != nil {
		return nil, listError
	}
	for _, field := range fields {
		if field.FieldName() == fieldName {
			return field, nil
		}
	}
	return nil, fmt.Errorf(fieldNotFoundErrorTemplateConstant, ErrFieldNotFound, fieldName)
}

// LocateSingleSelectField returns the named field when it is a single-select field.
func (synchronizer *Synchronizer) LocateSingleSelectField(executionContext context.Context, boardID string, fieldName string) (SingleSelectField, error) {
	field, locateError := synchronizer.LocateField(executionContext, boardID, fieldName)
	if locateError != nil {
		return SingleSelectField{}, locateError
	}
	singleSelectField, isSingleSelect := field.(SingleSelectField)
	if !isSingleSelect {
		return SingleSelectField{}, FieldNotSingleSelectError{FieldName: fieldName}
	}
	return singleSelectField, nil
}

// ResolveOption matches statusName case-insensitively against the field's options and returns the option identifier.
func ResolveOption(field SingleSelectField, statusName string) (string, bool) {
	for _, option := range field.Options {
		if strings.EqualFold(option.Name, statusName) {
			return option.ID, true
		}
	}
	return "", false
}

// SetItemStatus moves a board item to the named Status option with a single mutation.
// Failures are printed and logged, and reported only through the returned flag.
func (synchronizer *Synchronizer) SetItemStatus(executionContext context.Context, boardID string, itemID string, statusName string) bool {
	field, locateError := synchronizer.LocateField(executionContext, boardID, StatusFieldName)
	if locateError != nil {
		if errors.Is(locateError, ErrFieldNotFound) {
			fmt.Fprintf(synchronizer.output, statusFieldMissingTemplateConstant, StatusFieldName)
			synchronizer.logStatusFailure(boardID, itemID, statusName, reasonFieldMissingConstant, locateError)
			return false
		}
		fmt.Fprintf(synchronizer.output, statusUpdateFailedTemplateConstant, locateError)
		synchronizer.logStatusFailure(boardID, itemID, statusName, reasonFieldLookupFailedConstant, locateError)
		return false
	}

	statusField, isSingleSelect := field.(SingleSelectField)
	if !isSingleSelect {
		fmt.Fprintf(synchronizer.output, statusFieldNotSingleSelectTemplateConstant, StatusFieldName)
		synchronizer.logStatusFailure(boardID, itemID, statusName, reasonFieldNotSingleSelectConstant, FieldNotSingleSelectError{FieldName: StatusFieldName})
		return false
	}

	optionID, optionFound := ResolveOption(statusField, statusName)
	if !optionFound {
		fmt.Fprintf(synchronizer.output, statusOptionMissingTemplateConstant, statusName)
		synchronizer.logStatusFailure(boardID, itemID, statusName, reasonOptionMissingConstant, nil)
		return false
	}

	_, mutationError := synchronizer.gateway.ExecuteGraphQL(executionContext, updateItemStatusMutationConstant, map[string]any{
		projectIDVariableConstant: boardID,
		itemIDVariableConstant:    itemID,
		fieldIDVariableConstant:   statusField.ID,
		optionIDVariableConstant:  optionID,
	})
	if mutationError != nil {
		fmt.Fprintf(synchronizer.output, statusUpdateFailedTemplateConstant, mutationError)
		synchronizer.logStatusFailure(boardID, itemID, statusName, reasonMutationFailedConstant, mutationError)
		return false
	}

	fmt.Fprintf(synchronizer.output, statusUpdatedTemplateConstant, statusName)
	synchronizer.logger.Info(
		statusUpdatedLogMessageConstant,
		zap.String(logFieldProjectIDConstant, boardID),
		zap.String(logFieldItemIDConstant, itemID),
		zap.String(logFieldStatusConstant, statusName),
	)
	return true
}

// FindItemByContent returns the item binding the content node to the board, scanning the content's first ten project items.
func (synchronizer *Synchronizer) FindItemByContent(executionContext context.Context, boardID string, contentID string) (string, bool, error) {
	data, executionError := synchronizer.gateway.ExecuteGraphQL(executionContext, contentProjectItemsQueryConstant, map[string]any{
		contentIDVariableConstant: contentID,
	})
	if executionError != nil {
		return "", false, executionError
	}

	var response struct {
		Node *struct {
			ProjectItems struct {
				Nodes []struct {
					ID      string `json:"id"`
					Project struct {
						ID string `json:"id"`
					} `json:"project"`
				} `json:"nodes"`
			} `json:"projectItems"`
		} `json:"node"`
	}
	if decodingError := json.Unmarshal(data, &response); decodingError != nil {
		return "", false, fmt.Errorf(decodeResponseErrorTemplateConstant, contentItemsOperationNameConstant, decodingError)
	}
	if response.Node == nil {
		return "", false, nil
	}

	for _, itemNode := range response.Node.ProjectItems.Nodes {
		if itemNode.Project.ID == boardID {
			return itemNode.ID, true, nil
		}
	}
	return "", false, nil
}

// AddItem attaches content to the board and returns the new item identifier.
// Adding content that is already on the board is left to the remote service to reject.
func (synchronizer *Synchronizer) AddItem(executionContext context.Context, boardID string, contentID string) (string, error) {
	data, executionError := synchronizer.gateway.ExecuteGraphQL(executionContext, addItemMutationConstant, map[string]any{
		projectIDVariableConstant: boardID,
		contentIDVariableConstant: contentID,
	})
	if executionError != nil {
		return "", executionError
	}

	var response struct {
		AddProjectV2ItemByID *struct {
			Item *struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}
	if decodingError := json.Unmarshal(data, &response); decodingError != nil {
		return "", fmt.Errorf(decodeResponseErrorTemplateConstant, addItemOperationNameConstant, decodingError)
	}
	if response.AddProjectV2ItemByID == nil || response.AddProjectV2ItemByID.Item == nil || len(response.AddProjectV2ItemByID.Item.ID) == 0 {
		return "", ErrMissingAddedItem
	}
	return response.AddProjectV2ItemByID.Item.ID, nil
}

func (synchronizer *Synchronizer) logStatusFailure(boardID string, itemID string, statusName string, reason string, failure error) {
	fields := []zap.Field{
		zap.String(logFieldProjectIDConstant, boardID),
		zap.String(logFieldItemIDConstant, itemID),
		zap.String(logFieldStatusConstant, statusName),
		zap.String(logFieldReasonConstant, reason),
	}
	if failure != nil {
		fields = append(fields, zap.Error(failure))
	}
	synchronizer.logger.Warn(statusUpdateFailedLogMessageConstant, fields...)
}
