package plan

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sdejongh/aisync/pkg/catalog"
	"github.com/sdejongh/aisync/pkg/config"
	"github.com/sdejongh/aisync/pkg/models"
)

const (
	testHome    = "/home/alice"
	testWinRoot = "/mnt/c/Users/Alice"
)

func newTestPlanner(withWindows bool) *Planner {
	roots := Roots{
		Home:       testHome,
		RemoteUser: "alice",
		RemoteHost: "nas",
		RemoteDir:  "~/sync",
	}
	if withWindows {
		roots.WindowsRoot = testWinRoot
	}
	return NewPlanner(NewResolver(roots))
}

var (
	claudeMD = models.FileMapping{
		RelativePath: ".claude/CLAUDE.md",
		KeepMode:     models.KeepPreferWindows,
		Description:  "Claude instructions",
	}
	geminiSettings = models.FileMapping{
		RelativePath: ".gemini/settings.json",
		KeepMode:     models.KeepBoth,
		Description:  "Gemini settings",
	}
)

func TestPolicyTableCoversEveryKeepMode(t *testing.T) {
	if len(policies) != len(models.KeepModes()) {
		t.Fatalf("policies has %d entries, want %d", len(policies), len(models.KeepModes()))
	}
	for _, mode := range models.KeepModes() {
		if _, ok := policies[mode]; !ok {
			t.Errorf("no policy for keep mode %s", mode)
		}
	}
}

func TestPlanPreferWindowsPushWithWindows(t *testing.T) {
	got := newTestPlanner(true).Plan([]models.FileMapping{claudeMD}, models.OperationPush)

	want := []models.RsyncTask{
		{
			Src:         "/mnt/c/Users/Alice/.claude/CLAUDE.md",
			Dest:        "/home/alice/.claude/CLAUDE.md",
			Description: "Windows to Linux: Claude instructions",
			Stage:       models.StageWindowsToLinux,
		},
		{
			Src:         "/home/alice/.claude/CLAUDE.md",
			Dest:        "alice@nas:~/sync/.claude/CLAUDE.md",
			Description: "Linux to Remote: Claude instructions",
			Stage:       models.StageLinuxToRemote,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanPreferWindowsPushWithoutWindows(t *testing.T) {
	got := newTestPlanner(false).Plan([]models.FileMapping{claudeMD}, models.OperationPush)

	want := []models.RsyncTask{
		{
			Src:         "/home/alice/.claude/CLAUDE.md",
			Dest:        "alice@nas:~/sync/.claude/CLAUDE.md",
			Description: "Linux to Remote: Claude instructions",
			Stage:       models.StageLinuxToRemote,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanKeepBothPullWithoutWindows(t *testing.T) {
	got := newTestPlanner(false).Plan([]models.FileMapping{geminiSettings}, models.OperationPull)

	want := []models.RsyncTask{
		{
			Src:         "alice@nas:~/sync/.gemini/settings.linux.json",
			Dest:        "/home/alice/.gemini/settings.json",
			Description: "Remote to Linux: Gemini settings",
			Stage:       models.StageRemoteToLinux,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanPolicyTable(t *testing.T) {
	stages := func(tasks []models.RsyncTask) []models.Stage {
		out := make([]models.Stage, len(tasks))
		for i, task := range tasks {
			out[i] = task.Stage
		}
		return out
	}

	tests := []struct {
		mode    models.KeepMode
		op      models.Operation
		windows bool
		want    []models.Stage
	}{
		{models.KeepPreferWindows, models.OperationPush, true, []models.Stage{models.StageWindowsToLinux, models.StageLinuxToRemote}},
		{models.KeepPreferWindows, models.OperationPush, false, []models.Stage{models.StageLinuxToRemote}},
		{models.KeepPreferWindows, models.OperationPull, true, []models.Stage{models.StageRemoteToLinux, models.StageLinuxToWindows}},
		{models.KeepPreferWindows, models.OperationPull, false, []models.Stage{models.StageRemoteToLinux}},
		{models.KeepPreferLinux, models.OperationPush, true, []models.Stage{models.StageLinuxToWindows, models.StageLinuxToRemote}},
		{models.KeepPreferLinux, models.OperationPush, false, []models.Stage{models.StageLinuxToRemote}},
		{models.KeepPreferLinux, models.OperationPull, true, []models.Stage{models.StageRemoteToLinux, models.StageLinuxToWindows}},
		{models.KeepPreferLinux, models.OperationPull, false, []models.Stage{models.StageRemoteToLinux}},
		{models.KeepBoth, models.OperationPush, true, []models.Stage{models.StageWindowsToRemote, models.StageLinuxToRemote}},
		{models.KeepBoth, models.OperationPush, false, []models.Stage{models.StageLinuxToRemote}},
		{models.KeepBoth, models.OperationPull, true, []models.Stage{models.StageRemoteToLinux, models.StageRemoteToWindows}},
		{models.KeepBoth, models.OperationPull, false, []models.Stage{models.StageRemoteToLinux}},
	}

	for _, tt := range tests {
		name := string(tt.mode) + "/" + string(tt.op)
		if !tt.windows {
			name += "/no-windows"
		}
		t.Run(name, func(t *testing.T) {
			m := models.FileMapping{RelativePath: "dir/file.json", KeepMode: tt.mode}
			got := stages(newTestPlanner(tt.windows).PlanMapping(m, tt.op))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("stages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanKeepBothPushSuffixes(t *testing.T) {
	for _, withWindows := range []bool{true, false} {
		tasks := newTestPlanner(withWindows).PlanMapping(geminiSettings, models.OperationPush)

		var remotes []string
		for _, task := range tasks {
			if strings.HasPrefix(task.Dest, "alice@nas:") {
				remotes = append(remotes, task.Dest)
			}
		}

		wantCount := 1
		if withWindows {
			wantCount = 2
		}
		if len(remotes) != wantCount {
			t.Fatalf("windows=%v: %d remote-bound tasks, want %d", withWindows, len(remotes), wantCount)
		}

		if withWindows {
			if remotes[0] != "alice@nas:~/sync/.gemini/settings.windows.json" {
				t.Errorf("windows copy = %s", remotes[0])
			}
			if remotes[1] != "alice@nas:~/sync/.gemini/settings.linux.json" {
				t.Errorf("linux copy = %s", remotes[1])
			}
			if strings.Replace(remotes[0], ".windows", ".linux", 1) != remotes[1] {
				t.Errorf("remote copies differ by more than the suffix: %s vs %s", remotes[0], remotes[1])
			}
		}
	}
}

func TestPlanPreferWindowsOrdering(t *testing.T) {
	tasks := newTestPlanner(true).Plan(catalog.Default().Mappings(), models.OperationPush)

	lastWinToLinux := map[string]int{}
	for i, task := range tasks {
		if task.Stage == models.StageWindowsToLinux {
			lastWinToLinux[task.Dest] = i
		}
		if task.Stage == models.StageLinuxToRemote {
			if j, ok := lastWinToLinux[task.Src]; ok && j >= i {
				t.Errorf("Windows to Linux for %s at %d is not before Linux to Remote at %d", task.Src, j, i)
			}
		}
	}
}

func TestPlanWithoutWindowsNeverReferencesWindows(t *testing.T) {
	planner := newTestPlanner(false)
	mappings := catalog.Default().Mappings()

	for _, op := range []models.Operation{models.OperationPull, models.OperationPush} {
		for _, task := range planner.Plan(mappings, op) {
			for _, p := range []string{task.Src, task.Dest} {
				if strings.HasPrefix(p, "/mnt/") || strings.Contains(p, "Documents/Cline") || strings.Contains(p, "AppData") {
					t.Errorf("%s task references a Windows path: %s", op, p)
				}
			}
			if strings.Contains(task.Dest, ".windows") || strings.Contains(task.Src, ".windows") {
				t.Errorf("%s task references a .windows remote copy: %+v", op, task)
			}
		}
	}
}

func TestPlanDirectoryMappings(t *testing.T) {
	rules := models.FileMapping{
		RelativePath:        "Cline/Rules/",
		WindowsRelativePath: "Documents/Cline/Rules/",
		KeepMode:            models.KeepPreferWindows,
		IsDirectory:         true,
		Description:         "Cline rules",
	}

	planner := newTestPlanner(true)
	for _, mode := range models.KeepModes() {
		rules.KeepMode = mode
		for _, op := range []models.Operation{models.OperationPush, models.OperationPull} {
			for _, task := range planner.PlanMapping(rules, op) {
				if !task.IsDirectory {
					t.Errorf("%s/%s: task %q lost IsDirectory", mode, op, task.Description)
				}
			}
		}
	}

	tasks := planner.PlanMapping(models.FileMapping{
		RelativePath:        "Cline/Rules/",
		WindowsRelativePath: "Documents/Cline/Rules/",
		KeepMode:            models.KeepPreferWindows,
		IsDirectory:         true,
	}, models.OperationPush)
	if tasks[0].Src != "/mnt/c/Users/Alice/Documents/Cline/Rules" {
		t.Errorf("Windows source = %s, want the windows_path override", tasks[0].Src)
	}
	if tasks[0].Dest != "/home/alice/Cline/Rules" {
		t.Errorf("Linux dest = %s", tasks[0].Dest)
	}
}

func TestPlanPreservesCatalogOrder(t *testing.T) {
	mappings := catalog.Default().Mappings()
	tasks := newTestPlanner(false).Plan(mappings, models.OperationPush)

	if len(tasks) != len(mappings) {
		t.Fatalf("len(tasks) = %d, want one per mapping (%d)", len(tasks), len(mappings))
	}
	for i, m := range mappings {
		if !strings.HasSuffix(tasks[i].Description, m.Description) {
			t.Errorf("task %d = %q, want mapping %q", i, tasks[i].Description, m.Description)
		}
	}
}

func TestPlanUnknownKeepModePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("PlanMapping() should panic on an unknown keep mode")
		}
	}()
	newTestPlanner(true).PlanMapping(models.FileMapping{RelativePath: "x", KeepMode: "bogus"}, models.OperationPush)
}

func TestNewResolverFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.HomeDir = testHome
	cfg.Remote.User = "alice"
	cfg.Remote.Host = "nas"
	cfg.Remote.Dir = "/srv/sync/"
	cfg.Windows.User = "Alice"

	r, err := NewResolverFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewResolverFromConfig() error = %v", err)
	}

	if got := r.Remote(claudeMD); got != "alice@nas:/srv/sync/.claude/CLAUDE.md" {
		t.Errorf("Remote() = %s", got)
	}
	win, ok := r.Windows(claudeMD)
	if !ok || win != "/mnt/c/Users/Alice/.claude/CLAUDE.md" {
		t.Errorf("Windows() = %s, %v", win, ok)
	}
	if got := r.RemoteWithSuffix(models.FileMapping{RelativePath: ".codex/AGENTS"}, ".linux"); got != "alice@nas:/srv/sync/.codex/AGENTS.linux" {
		t.Errorf("RemoteWithSuffix() = %s", got)
	}
}
