package projects

const (
	boardFieldsQueryConstant = `query($projectId: ID!) {
  node(id: $projectId) {
    ... on ProjectV2 {
      fields(first: 20) {
        nodes {
          __typename
          ... on ProjectV2FieldCommon { id name dataType }
          ... on ProjectV2SingleSelectField { options { id name color description } }
        }
      }
    }
  }
}`

	updateItemStatusMutationConstant = `mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $optionId: String!) {
  updateProjectV2ItemFieldValue(
    input: {projectId: $projectId, itemId: $itemId, fieldId: $fieldId, value: {singleSelectOptionId: $optionId}}
  ) {
    projectV2Item { id }
  }
}`

	contentProjectItemsQueryConstant = `query($contentId: ID!) {
  node(id: $contentId) {
    ... on Issue {
      projectItems(first: 10, includeArchived: false) { nodes { id project { id } } }
    }
    ... on PullRequest {
      projectItems(first: 10, includeArchived: false) { nodes { id project { id } } }
    }
  }
}`

	addItemMutationConstant = `mutation($projectId: ID!, $contentId: ID!) {
  addProjectV2ItemById(input: {projectId: $projectId, contentId: $contentId}) {
    item { id }
  }
}`

	ownerBoardsQueryConstant = `query($login: String!, $title: String!) {
  repositoryOwner(login: $login) {
    id
    ... on User { projectsV2(first: 20, query: $title) { nodes { id number title closed url repositories(first: 100) { nodes { nameWithOwner } } } } }
    ... on Organization { projectsV2(first: 20, query: $title) { nodes { id number title closed url repositories(first: 100) { nodes { nameWithOwner } } } } }
  }
}`

	createBoardMutationConstant = `mutation($ownerId: ID!, $title: String!) {
  createProjectV2(input: {ownerId: $ownerId, title: $title}) {
    projectV2 { id number title closed url }
  }
}`

	repositoryIDQueryConstant = `query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) { id }
}`

	linkRepositoryMutationConstant = `mutation($projectId: ID!, $repositoryId: ID!) {
  linkProjectV2ToRepository(input: {projectId: $projectId, repositoryId: $repositoryId}) {
    repository { id }
  }
}`

	createSingleSelectFieldMutationConstant = `mutation($projectId: ID!, $name: String!, $options: [ProjectV2SingleSelectFieldOptionInput!]!) {
  createProjectV2Field(input: {projectId: $projectId, dataType: SINGLE_SELECT, name: $name, singleSelectOptions: $options}) {
    projectV2Field {
      ... on ProjectV2SingleSelectField { id name options { id name color description } }
    }
  }
}`

	updateFieldOptionsMutationConstant = `mutation($fieldId: ID!, $options: [ProjectV2SingleSelectFieldOptionInput!]!) {
  updateProjectV2Field(input: {fieldId: $fieldId, singleSelectOptions: $options}) {
    projectV2Field {
      ... on ProjectV2SingleSelectField { id name }
    }
  }
}`

	boardItemsQueryConstant = `query($projectId: ID!, $statusField: String!) {
  node(id: $projectId) {
    ... on ProjectV2 {
      items(first: 50) {
        nodes {
          id
          content {
            __typename
            ... on Issue { number title state }
            ... on PullRequest { number title state }
            ... on DraftIssue { title }
          }
          fieldValueByName(name: $statusField) {
            ... on ProjectV2ItemFieldSingleSelectValue { name }
          }
        }
      }
    }
  }
}`
)
