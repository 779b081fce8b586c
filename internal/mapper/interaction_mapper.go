package mapper

import (
	"encoding/json"

	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type InteractionMapper struct{}

func NewInteractionMapper() *InteractionMapper {
	return &InteractionMapper{}
}

func (m *InteractionMapper) ToEntity(i *model.Interaction) *entity.Interaction {
	if i == nil {
		return nil
	}
	var props map[string]interface{}
	if len(i.Properties) > 0 {
		// Corrupt rows still map, just without properties
		_ = json.Unmarshal(i.Properties, &props)
	}
	return &entity.Interaction{
		Id:         i.Id,
		Kind:       i.Kind,
		UserId:     i.UserId,
		Agent:      i.Agent,
		Query:      i.Query,
		Reply:      i.Reply,
		Properties: props,
		CreatedAt:  i.CreatedAt,
	}
}

func (m *InteractionMapper) ToModel(i *entity.Interaction) (*model.Interaction, error) {
	if i == nil {
		return nil, nil
	}
	var props datatypes.JSON
	if i.Properties != nil {
		raw, err := json.Marshal(i.Properties)
		if err != nil {
			return nil, err
		}
		props = datatypes.JSON(raw)
	}
	return &model.Interaction{
		Id:         i.Id,
		Kind:       i.Kind,
		UserId:     i.UserId,
		Agent:      i.Agent,
		Query:      i.Query,
		Reply:      i.Reply,
		Properties: props,
		CreatedAt:  i.CreatedAt,
	}, nil
}
