package client

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/applylog/internal/client/models"
	pb "github.com/dmitrijs2005/applylog/internal/proto"
)

func jobFromPB(p pb.Job) models.Job {
	j := models.Job{
		ID:             p.ID,
		Title:          p.Title,
		Company:        p.Company,
		DateApplied:    p.DateApplied,
		JobLink:        p.JobLink,
		Salary:         p.Salary,
		Location:       p.Location,
		Status:         p.Status,
		NextActionDate: p.NextActionDate,
		Notes:          p.Notes,
		Platforms:      slices.Clone(p.Platforms),
	}
	j.CreatedAt, _ = time.Parse(time.RFC3339, p.CreatedAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, p.UpdatedAt)
	return j
}

func jobInputToPB(j models.Job) pb.JobInput {
	return pb.JobInput{
		Title:          j.Title,
		Company:        j.Company,
		DateApplied:    j.DateApplied,
		JobLink:        j.JobLink,
		Salary:         j.Salary,
		Location:       j.Location,
		Status:         j.Status,
		NextActionDate: j.NextActionDate,
		Notes:          j.Notes,
		Platforms:      slices.Clone(j.Platforms),
	}
}

func diffToPB(d models.JobDiff) pb.JobPatch {
	d = d.Clone()
	return pb.JobPatch{
		Title:          d.Title,
		Company:        d.Company,
		DateApplied:    d.DateApplied,
		JobLink:        d.JobLink,
		Salary:         d.Salary,
		Location:       d.Location,
		Status:         d.Status,
		NextActionDate: d.NextActionDate,
		Notes:          d.Notes,
		Platforms:      d.Platforms,
	}
}

func metaToPB(m TagMeta) (*pb.TagRef, []pb.TagRef) {
	var status *pb.TagRef
	if m.Status != nil {
		status = &pb.TagRef{Key: m.Status.Key, Name: m.Status.Name}
	}
	var platforms []pb.TagRef
	for _, t := range m.Platforms {
		platforms = append(platforms, pb.TagRef{Key: t.Key, Name: t.Name})
	}
	return status, platforms
}

func tagsFromPB(in []pb.TagRef, def bool) []models.Tag {
	out := make([]models.Tag, 0, len(in))
	for _, t := range in {
		out = append(out, models.Tag{Key: t.Key, Name: t.Name, Default: def})
	}
	return out
}

func queryToPB(q models.Query) *pb.ListJobsRequest {
	return &pb.ListJobsRequest{
		Q:         q.Q,
		Status:    q.Status,
		Platform:  q.Platform,
		DateFrom:  q.DateFrom,
		DateTo:    q.DateTo,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.Page,
		Limit:     q.Limit,
	}
}

func statsFromPB(r *pb.GetStatsResponse) models.Stats {
	s := models.Stats{
		Total:           r.Total,
		ByStatus:        r.StatusBreakdown,
		ByPlatform:      r.PlatformBreakdown,
		ThisWeek:        r.ThisWeek,
		ThisMonth:       r.ThisMonth,
		UpcomingActions: r.UpcomingActions,
	}
	for _, p := range r.TopPlatforms {
		s.TopPlatforms = append(s.TopPlatforms, models.PlatformCount{Key: p.Key, Count: p.Count})
	}
	return s
}
