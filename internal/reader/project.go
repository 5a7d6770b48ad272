package reader

import (
	"context"
	"fmt"
	"math/big"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/model"
)

// ProjectReader 项目读取器
type ProjectReader struct {
	session chain.Session
	cache   *cache.Store
}

// NewProjectReader 创建项目读取器
func NewProjectReader(session chain.Session, store *cache.Store) *ProjectReader {
	return &ProjectReader{session: session, cache: store}
}

// List 获取全部项目及统计。
// 合约未部署时返回空列表和零值统计，浏览页面保持可用。
func (r *ProjectReader) List(ctx context.Context) (*model.ProjectList, error) {
	value, err := r.cache.Get(ctx, cache.NewKey(cache.KindProjectList, cache.Wildcard), r.fetchList)
	if err != nil {
		if errs.KindOf(err) == errs.KindLedgerUnreachable {
			logger.Warn("Contract not reachable, returning empty project list: %v", err)
			return emptyProjectList(), nil
		}
		return nil, err
	}

	return value.(*model.ProjectList), nil
}

// Get 获取单个项目，不存在返回 nil
func (r *ProjectReader) Get(ctx context.Context, projectId string) (*model.Project, error) {
	value, err := r.cache.Get(ctx, cache.NewKey(cache.KindProject, projectId), func(ctx context.Context) (interface{}, error) {
		return r.fetchProject(ctx, projectId)
	})
	if err != nil {
		return nil, err
	}

	project, _ := value.(*model.Project)
	return project, nil
}

// fetchList 枚举项目。总数只读一次，
// 读取期间总数变化时按本次快照处理。
func (r *ProjectReader) fetchList(ctx context.Context) (interface{}, error) {
	out, err := r.session.Call(ctx, chain.TargetDonations, "totalProjects")
	if err != nil {
		return nil, errs.Classify(err)
	}

	total, err := fieldBig(out, 0)
	if err != nil {
		return nil, errs.Classify(fmt.Errorf("invalid project count: %w", err))
	}

	count := int(total.Int64())
	projects := make([]model.Project, 0, count)
	raisedTotal := new(big.Int)
	validatedTotal := new(big.Int)

	for i := 0; i < count; i++ {
		idOut, err := r.session.Call(ctx, chain.TargetDonations, "projectIdAt", big.NewInt(int64(i)))
		if err != nil {
			if kind := errs.KindOf(errs.Classify(err)); kind == errs.KindLedgerUnreachable {
				return nil, errs.Classify(err)
			}
			// 单条记录失败只跳过，列表视图宁可部分结果
			logger.Warn("Skipping project at index %d: %v", i, err)
			continue
		}

		projectId, err := fieldString(idOut, 0)
		if err != nil {
			logger.Warn("Skipping malformed project id at index %d: %v", i, err)
			continue
		}

		detail, err := r.session.Call(ctx, chain.TargetDonations, "getProject", projectId)
		if err != nil {
			logger.Warn("Skipping project %s: %v", projectId, err)
			continue
		}

		project, raised, validated, err := decodeProject(detail)
		if err != nil {
			logger.Warn("Skipping malformed project %s: %v", projectId, err)
			continue
		}

		projects = append(projects, *project)
		raisedTotal.Add(raisedTotal, raised)
		validatedTotal.Add(validatedTotal, validated)
	}

	list := &model.ProjectList{
		Projects: projects,
		Stats: model.ProjectStats{
			TotalProjects:  len(projects),
			TotalRaised:    FormatUnitsFixed(raisedTotal, 2),
			TotalValidated: FormatUnitsFixed(validatedTotal, 2),
		},
	}

	logger.Debug("Loaded %d projects from contract", len(projects))
	return list, nil
}

// fetchProject 读取单个项目
func (r *ProjectReader) fetchProject(ctx context.Context, projectId string) (interface{}, error) {
	out, err := r.session.Call(ctx, chain.TargetDonations, "getProject", projectId)
	if err != nil {
		return nil, errs.Classify(err)
	}

	id, err := fieldString(out, 0)
	if err != nil {
		return nil, fmt.Errorf("malformed project record: %w", err)
	}
	if id == "" {
		// 空ID哨兵表示项目不存在
		return (*model.Project)(nil), nil
	}

	project, _, _, err := decodeProject(out)
	if err != nil {
		return nil, fmt.Errorf("malformed project record: %w", err)
	}

	return project, nil
}

// decodeProject 原始元组转项目实体
func decodeProject(out []interface{}) (*model.Project, *big.Int, *big.Int, error) {
	id, err := fieldString(out, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	description, err := fieldString(out, 1)
	if err != nil {
		return nil, nil, nil, err
	}
	responsible, err := fieldAddress(out, 2)
	if err != nil {
		return nil, nil, nil, err
	}
	raised, err := fieldBig(out, 3)
	if err != nil {
		return nil, nil, nil, err
	}
	validated, err := fieldBig(out, 4)
	if err != nil {
		return nil, nil, nil, err
	}
	state, err := fieldUint8(out, 5)
	if err != nil {
		return nil, nil, nil, err
	}
	approvalVotes, err := fieldBig(out, 6)
	if err != nil {
		return nil, nil, nil, err
	}
	cancellationVotes, err := fieldBig(out, 7)
	if err != nil {
		return nil, nil, nil, err
	}

	project := &model.Project{
		Id:                id,
		Description:       description,
		Responsible:       responsible.Hex(),
		AmountRaised:      FormatUnits(raised),
		AmountValidated:   FormatUnits(validated),
		State:             model.ProjectState(state),
		ApprovalVotes:     approvalVotes,
		CancellationVotes: cancellationVotes,
	}

	return project, raised, validated, nil
}

// emptyProjectList 空列表加零值统计
func emptyProjectList() *model.ProjectList {
	return &model.ProjectList{
		Projects: []model.Project{},
		Stats: model.ProjectStats{
			TotalProjects:  0,
			TotalRaised:    "0.00",
			TotalValidated: "0.00",
		},
	}
}
