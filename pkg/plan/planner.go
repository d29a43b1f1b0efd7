// Package plan derives the ordered rsync tasks of a push or pull from the
// mapping catalog. Planning performs no I/O and cannot fail on a validated
// catalog.
package plan

import (
	"fmt"

	"github.com/sdejongh/aisync/internal/platform"
	"github.com/sdejongh/aisync/pkg/models"
)

// policy implements one keep mode in both directions. Windows hops are only
// emitted when the resolver has a Windows root.
type policy interface {
	push(r *Resolver, m models.FileMapping) []models.RsyncTask
	pull(r *Resolver, m models.FileMapping) []models.RsyncTask
}

// policies must hold exactly one entry per models.KeepModes()
var policies = map[models.KeepMode]policy{
	models.KeepPreferWindows: preferWindows{},
	models.KeepPreferLinux:   preferLinux{},
	models.KeepBoth:          keepBoth{},
}

// Planner builds task lists for a fixed set of roots
type Planner struct {
	resolver *Resolver
}

// NewPlanner creates a planner
func NewPlanner(resolver *Resolver) *Planner {
	return &Planner{resolver: resolver}
}

// Plan returns the tasks for every mapping, in catalog order
func (p *Planner) Plan(mappings []models.FileMapping, op models.Operation) []models.RsyncTask {
	var tasks []models.RsyncTask
	for _, m := range mappings {
		tasks = append(tasks, p.PlanMapping(m, op)...)
	}
	return tasks
}

// PlanMapping returns the tasks for a single mapping
func (p *Planner) PlanMapping(m models.FileMapping, op models.Operation) []models.RsyncTask {
	pol, ok := policies[m.KeepMode]
	if !ok {
		panic(fmt.Sprintf("plan: no policy for keep mode %q (mapping %s)", m.KeepMode, m.RelativePath))
	}

	switch op {
	case models.OperationPush:
		return pol.push(p.resolver, m)
	case models.OperationPull:
		return pol.pull(p.resolver, m)
	default:
		panic(fmt.Sprintf("plan: unknown operation %q", op))
	}
}

// preferWindows: Windows -> Linux -> Remote on push
type preferWindows struct{}

func (preferWindows) push(r *Resolver, m models.FileMapping) []models.RsyncTask {
	var tasks []models.RsyncTask
	linux := r.Linux(m)
	if win, ok := r.Windows(m); ok {
		tasks = append(tasks, models.NewRsyncTask(models.StageWindowsToLinux, win, linux, m))
	}
	return append(tasks, models.NewRsyncTask(models.StageLinuxToRemote, linux, r.Remote(m), m))
}

func (preferWindows) pull(r *Resolver, m models.FileMapping) []models.RsyncTask {
	return pullSingleCopy(r, m)
}

// preferLinux: Linux -> Windows, Linux -> Remote on push
type preferLinux struct{}

func (preferLinux) push(r *Resolver, m models.FileMapping) []models.RsyncTask {
	var tasks []models.RsyncTask
	linux := r.Linux(m)
	if win, ok := r.Windows(m); ok {
		tasks = append(tasks, models.NewRsyncTask(models.StageLinuxToWindows, linux, win, m))
	}
	return append(tasks, models.NewRsyncTask(models.StageLinuxToRemote, linux, r.Remote(m), m))
}

func (preferLinux) pull(r *Resolver, m models.FileMapping) []models.RsyncTask {
	return pullSingleCopy(r, m)
}

// pullSingleCopy restores the one remote copy to Linux and fans it out to
// Windows. The remote copy does not record which side produced it, so both
// prefer modes pull the same way.
func pullSingleCopy(r *Resolver, m models.FileMapping) []models.RsyncTask {
	linux := r.Linux(m)
	tasks := []models.RsyncTask{
		models.NewRsyncTask(models.StageRemoteToLinux, r.Remote(m), linux, m),
	}
	if win, ok := r.Windows(m); ok {
		tasks = append(tasks, models.NewRsyncTask(models.StageLinuxToWindows, linux, win, m))
	}
	return tasks
}

// keepBoth stores each side under its own suffixed remote name
type keepBoth struct{}

func (keepBoth) push(r *Resolver, m models.FileMapping) []models.RsyncTask {
	var tasks []models.RsyncTask
	if win, ok := r.Windows(m); ok {
		tasks = append(tasks, models.NewRsyncTask(models.StageWindowsToRemote, win, r.RemoteWithSuffix(m, platform.WindowsSuffix), m))
	}
	return append(tasks, models.NewRsyncTask(models.StageLinuxToRemote, r.Linux(m), r.RemoteWithSuffix(m, platform.LinuxSuffix), m))
}

func (keepBoth) pull(r *Resolver, m models.FileMapping) []models.RsyncTask {
	tasks := []models.RsyncTask{
		models.NewRsyncTask(models.StageRemoteToLinux, r.RemoteWithSuffix(m, platform.LinuxSuffix), r.Linux(m), m),
	}
	if win, ok := r.Windows(m); ok {
		tasks = append(tasks, models.NewRsyncTask(models.StageRemoteToWindows, r.RemoteWithSuffix(m, platform.WindowsSuffix), win, m))
	}
	return tasks
}
