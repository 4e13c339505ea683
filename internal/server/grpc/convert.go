package grpc

import (
	"time"

	pb "github.com/dmitrijs2005/applylog/internal/proto"
	"github.com/dmitrijs2005/applylog/internal/server/models"
	"github.com/dmitrijs2005/applylog/internal/server/services"
	"github.com/dmitrijs2005/applylog/internal/timex"
	"github.com/dmitrijs2005/applylog/internal/validation"
)

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toPBJob(j *models.Job) pb.Job {
	out := pb.Job{
		ID:          j.ID,
		Title:       j.Title,
		Company:     j.Company,
		DateApplied: timex.FormatDate(j.DateApplied),
		JobLink:     j.JobLink,
		Salary:      j.Salary,
		Location:    j.Location,
		Status:      j.Status,
		Notes:       j.Notes,
		Platforms:   j.Platforms,
		CreatedAt:   timestamp(j.CreatedAt),
		UpdatedAt:   timestamp(j.UpdatedAt),
	}
	if j.NextActionDate != nil {
		out.NextActionDate = timex.FormatDate(*j.NextActionDate)
	}
	if out.Platforms == nil {
		out.Platforms = []string{}
	}
	return out
}

func toPBTags(tags []models.Tag) []pb.TagRef {
	out := make([]pb.TagRef, 0, len(tags))
	for _, t := range tags {
		out = append(out, pb.TagRef{Key: t.Key, Name: t.Name})
	}
	return out
}

func toPBTokenPair(p *services.TokenPair) *pb.TokenPair {
	return &pb.TokenPair{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    int64(p.ExpiresIn / time.Second),
	}
}

func fromPBJobInput(in pb.JobInput) validation.Job {
	return validation.Job{
		Title:          in.Title,
		Company:        in.Company,
		DateApplied:    in.DateApplied,
		JobLink:        in.JobLink,
		Salary:         in.Salary,
		Location:       in.Location,
		Status:         in.Status,
		NextActionDate: in.NextActionDate,
		Notes:          in.Notes,
		Platforms:      in.Platforms,
	}
}

func fromPBPatch(p pb.JobPatch) validation.Patch {
	return validation.Patch{
		Title:          p.Title,
		Company:        p.Company,
		DateApplied:    p.DateApplied,
		JobLink:        p.JobLink,
		Salary:         p.Salary,
		Location:       p.Location,
		Status:         p.Status,
		NextActionDate: p.NextActionDate,
		Notes:          p.Notes,
		Platforms:      p.Platforms,
	}
}

func fromPBMeta(status *pb.TagRef, platforms []pb.TagRef) models.TagMeta {
	var meta models.TagMeta
	if status != nil {
		meta.Status = &models.Tag{Key: status.Key, Name: status.Name}
	}
	for _, p := range platforms {
		meta.Platforms = append(meta.Platforms, models.Tag{Key: p.Key, Name: p.Name})
	}
	return meta
}

func fromPBQuery(r *pb.ListJobsRequest) validation.Query {
	return validation.Query{
		Q:         r.Q,
		Status:    r.Status,
		Platform:  r.Platform,
		DateFrom:  r.DateFrom,
		DateTo:    r.DateTo,
		SortBy:    r.SortBy,
		SortOrder: r.SortOrder,
		Page:      r.Page,
		Limit:     r.Limit,
	}
}

func toPBStats(st *models.Stats) *pb.GetStatsResponse {
	top := make([]pb.PlatformCount, 0, len(st.TopPlatforms))
	for _, p := range st.TopPlatforms {
		top = append(top, pb.PlatformCount{Key: p.Key, Count: p.Count})
	}
	return &pb.GetStatsResponse{
		Total:             st.Total,
		StatusBreakdown:   st.StatusBreakdown,
		PlatformBreakdown: st.PlatformBreakdown,
		TopPlatforms:      top,
		ThisWeek:          st.ThisWeek,
		ThisMonth:         st.ThisMonth,
		UpcomingActions:   st.UpcomingActions,
	}
}
