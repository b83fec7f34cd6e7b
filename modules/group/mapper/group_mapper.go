package mapper

import (
	"timechart/modules/group/dto"
	"timechart/modules/group/entity"
)

func ToGroupEntity(req *dto.GroupRequest) *entity.Group {
	return &entity.Group{
		Name:        req.Name,
		IsActive:    req.IsActive,
		AllowSignup: req.AllowSignup,
		WeekLimit:   req.WeekLimit,
		Color:       req.Color,
	}
}

func ToGroupResponse(group *entity.Group) *dto.GroupResponse {
	return &dto.GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		IsActive:    group.IsActive,
		AllowSignup: group.AllowSignup,
		WeekLimit:   group.WeekLimit,
		Color:       group.Color,
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}
}

func ToGroupPaginationResponse(groups *entity.PaginatedGroupEntity) *dto.PaginatedGroupResponse {
	items := make([]dto.GroupResponse, len(groups.Items))
	for i := range groups.Items {
		items[i] = *ToGroupResponse(&groups.Items[i])
	}
	return &dto.PaginatedGroupResponse{
		Items:      items,
		TotalItems: groups.TotalItems,
		PageNumber: groups.PageNumber,
		PageSize:   groups.PageSize,
	}
}
