package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/stridelog/tracker-engine/internal/models"
)

// overrideFile is the YAML shape accepted from a catalog directory. Every
// section is optional; a present section replaces the built-in seed wholesale.
type overrideFile struct {
	DailyTasks        []DailyTask        `yaml:"daily_tasks"`
	ScheduleTemplates []ScheduleTemplate `yaml:"schedule_templates"`
	Quotes            []string           `yaml:"quotes"`
	Skills            []skillOverride    `yaml:"skills"`
	Projects          []projectOverride  `yaml:"projects"`
	EnglishTopics     []string           `yaml:"english_topics"`
}

type skillOverride struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

type projectOverride struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tech        []string `yaml:"tech"`
}

// LoadOverrides applies catalog overrides from every YAML file in dir. A
// missing directory is not an error; the built-in seeds stay in place.
func LoadOverrides(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := loadOverrideFile(file); err != nil {
			slog.Warn("failed to load catalog override", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("catalog overrides loaded", "dir", dir, "files", loaded)
	return nil
}

func loadOverrideFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var ov overrideFile
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(ov.DailyTasks) > 0 {
		for _, t := range ov.DailyTasks {
			if t.Key == "" || t.Label == "" {
				return fmt.Errorf("daily task requires key and label")
			}
		}
		DailyTasks = ov.DailyTasks
		slog.Info("daily task catalog replaced", "count", len(ov.DailyTasks))
	}

	if len(ov.ScheduleTemplates) > 0 {
		ScheduleTemplates = ov.ScheduleTemplates
	}

	if len(ov.Quotes) > 0 {
		MotivationalQuotes = ov.Quotes
	}

	if len(ov.Skills) > 0 {
		DefaultSkills = DefaultSkills[:0:0]
		for _, s := range ov.Skills {
			category := s.Category
			if category == "" {
				category = "other"
			}
			DefaultSkills = append(DefaultSkills, models.Skill{Name: s.Name, Category: category})
		}
	}

	if len(ov.Projects) > 0 {
		DefaultProjects = DefaultProjects[:0:0]
		for _, p := range ov.Projects {
			DefaultProjects = append(DefaultProjects, models.Project{
				Name:        p.Name,
				Description: p.Description,
				Tech:        p.Tech,
				Status:      models.ProjectTodo,
			})
		}
	}

	if len(ov.EnglishTopics) > 0 {
		DefaultEnglishTopics = DefaultEnglishTopics[:0:0]
		for _, name := range ov.EnglishTopics {
			DefaultEnglishTopics = append(DefaultEnglishTopics, models.EnglishTopic{Name: name})
		}
	}

	return nil
}
