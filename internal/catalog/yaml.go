package catalog

import (
	"context"
	"embed"

	"gopkg.in/yaml.v3"

	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
)

//go:embed data/*.yaml
var dataFS embed.FS

// yaml document schemas

type speciesDoc struct {
	Species []struct {
		ID                string         `yaml:"id"`
		Name              string         `yaml:"name"`
		BonusFeat         bool           `yaml:"bonus_feat"`
		BonusTrainedSkill bool           `yaml:"bonus_trained_skill"`
		AbilityChoice     bool           `yaml:"ability_choice"`
		AbilityMods       map[string]int `yaml:"ability_mods"`
	} `yaml:"species"`
}

type backgroundDoc struct {
	Backgrounds []struct {
		ID            string   `yaml:"id"`
		Name          string   `yaml:"name"`
		GrantedSkills []string `yaml:"granted_skills"`
	} `yaml:"backgrounds"`
}

type classDoc struct {
	Classes []struct {
		ID              string   `yaml:"id"`
		Name            string   `yaml:"name"`
		HitDie          int      `yaml:"hit_die"`
		BABRate         float64  `yaml:"bab_rate"`
		SkillPoints     int      `yaml:"skill_points"`
		ForceSensitive  bool     `yaml:"force_sensitive"`
		Prestige        bool     `yaml:"prestige"`
		StartingFeats   []string `yaml:"starting_feats"`
		TalentLevels    []int    `yaml:"talent_levels"`
		BonusFeatLevels []int    `yaml:"bonus_feat_levels"`
		Prerequisites   *struct {
			MinLevel       int      `yaml:"min_level"`
			MinBAB         int      `yaml:"min_bab"`
			TrainedSkills  []string `yaml:"trained_skills"`
			Feats          []string `yaml:"feats"`
			ForceSensitive bool     `yaml:"force_sensitive"`
		} `yaml:"prerequisites"`
	} `yaml:"classes"`
}

type featDoc struct {
	Feats []struct {
		ID            string   `yaml:"id"`
		Name          string   `yaml:"name"`
		MinBAB        int      `yaml:"min_bab"`
		Prerequisites []string `yaml:"prerequisites"`
	} `yaml:"feats"`
}

type talentDoc struct {
	Talents []struct {
		ID            string   `yaml:"id"`
		Name          string   `yaml:"name"`
		ClassID       string   `yaml:"class_id"`
		Tree          string   `yaml:"tree"`
		Prerequisites []string `yaml:"prerequisites"`
	} `yaml:"talents"`
}

type skillDoc struct {
	Skills []struct {
		ID         string `yaml:"id"`
		Name       string `yaml:"name"`
		KeyAbility string `yaml:"key_ability"`
	} `yaml:"skills"`
}

type embeddedCatalog struct {
	species     map[string]*Species
	backgrounds map[string]*Background
	classes     map[string]*Class
	feats       map[string]*Feat
	talents     map[string]*Talent
	skills      map[string]*Skill
	skillList   []*Skill
}

// New loads the embedded content catalog
func New() (Client, error) {
	c := &embeddedCatalog{
		species:     make(map[string]*Species),
		backgrounds: make(map[string]*Background),
		classes:     make(map[string]*Class),
		feats:       make(map[string]*Feat),
		talents:     make(map[string]*Talent),
		skills:      make(map[string]*Skill),
	}

	if err := c.loadSpecies(); err != nil {
		return nil, errors.Wrap(err, "failed to load species catalog")
	}
	if err := c.loadBackgrounds(); err != nil {
		return nil, errors.Wrap(err, "failed to load background catalog")
	}
	if err := c.loadClasses(); err != nil {
		return nil, errors.Wrap(err, "failed to load class catalog")
	}
	if err := c.loadFeats(); err != nil {
		return nil, errors.Wrap(err, "failed to load feat catalog")
	}
	if err := c.loadTalents(); err != nil {
		return nil, errors.Wrap(err, "failed to load talent catalog")
	}
	if err := c.loadSkills(); err != nil {
		return nil, errors.Wrap(err, "failed to load skill catalog")
	}

	return c, nil
}

func unmarshalFile(name string, out interface{}) error {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func (c *embeddedCatalog) loadSpecies() error {
	var doc speciesDoc
	if err := unmarshalFile("data/species.yaml", &doc); err != nil {
		return err
	}
	for _, entry := range doc.Species {
		mods := make(map[saga.Ability]int, len(entry.AbilityMods))
		for ability, mod := range entry.AbilityMods {
			mods[saga.Ability(ability)] = mod
		}
		species := &Species{
			ID:                entry.ID,
			Name:              entry.Name,
			BonusFeat:         entry.BonusFeat,
			BonusTrainedSkill: entry.BonusTrainedSkill,
			AbilityChoice:     entry.AbilityChoice,
			AbilityMods:       mods,
		}
		c.species[saga.CanonicalKey(entry.ID)] = species
		c.species[saga.CanonicalKey(entry.Name)] = species
	}
	return nil
}

func (c *embeddedCatalog) loadBackgrounds() error {
	var doc backgroundDoc
	if err := unmarshalFile("data/backgrounds.yaml", &doc); err != nil {
		return err
	}
	for _, entry := range doc.Backgrounds {
		background := &Background{
			ID:            entry.ID,
			Name:          entry.Name,
			GrantedSkills: entry.GrantedSkills,
		}
		c.backgrounds[saga.CanonicalKey(entry.ID)] = background
		c.backgrounds[saga.CanonicalKey(entry.Name)] = background
	}
	return nil
}

func (c *embeddedCatalog) loadClasses() error {
	var doc classDoc
	if err := unmarshalFile("data/classes.yaml", &doc); err != nil {
		return err
	}
	for _, entry := range doc.Classes {
		class := &Class{
			ID:              entry.ID,
			Name:            entry.Name,
			HitDie:          entry.HitDie,
			BABRate:         entry.BABRate,
			SkillPoints:     entry.SkillPoints,
			ForceSensitive:  entry.ForceSensitive,
			Prestige:        entry.Prestige,
			StartingFeats:   entry.StartingFeats,
			TalentLevels:    entry.TalentLevels,
			BonusFeatLevels: entry.BonusFeatLevels,
		}
		if entry.Prerequisites != nil {
			class.Prerequisites = &ClassPrerequisites{
				MinLevel:       entry.Prerequisites.MinLevel,
				MinBAB:         entry.Prerequisites.MinBAB,
				TrainedSkills:  entry.Prerequisites.TrainedSkills,
				Feats:          entry.Prerequisites.Feats,
				ForceSensitive: entry.Prerequisites.ForceSensitive,
			}
		}
		c.classes[saga.CanonicalKey(entry.ID)] = class
		c.classes[saga.CanonicalKey(entry.Name)] = class
	}
	return nil
}

func (c *embeddedCatalog) loadFeats() error {
	var doc featDoc
	if err := unmarshalFile("data/feats.yaml", &doc); err != nil {
		return err
	}
	for _, entry := range doc.Feats {
		feat := &Feat{
			ID:            entry.ID,
			Name:          entry.Name,
			MinBAB:        entry.MinBAB,
			Prerequisites: entry.Prerequisites,
		}
		c.feats[saga.CanonicalKey(entry.ID)] = feat
		c.feats[saga.CanonicalKey(entry.Name)] = feat
	}
	return nil
}

func (c *embeddedCatalog) loadTalents() error {
	var doc talentDoc
	if err := unmarshalFile("data/talents.yaml", &doc); err != nil {
		return err
	}
	for _, entry := range doc.Talents {
		talent := &Talent{
			ID:            entry.ID,
			Name:          entry.Name,
			ClassID:       entry.ClassID,
			Tree:          entry.Tree,
			Prerequisites: entry.Prerequisites,
		}
		c.talents[saga.CanonicalKey(entry.ID)] = talent
		c.talents[saga.CanonicalKey(entry.Name)] = talent
	}
	return nil
}

func (c *embeddedCatalog) loadSkills() error {
	var doc skillDoc
	if err := unmarshalFile("data/skills.yaml", &doc); err != nil {
		return err
	}
	for _, entry := range doc.Skills {
		skill := &Skill{
			ID:         entry.ID,
			Name:       entry.Name,
			KeyAbility: saga.Ability(entry.KeyAbility),
		}
		c.skills[saga.CanonicalKey(entry.ID)] = skill
		c.skills[saga.CanonicalKey(entry.Name)] = skill
		c.skillList = append(c.skillList, skill)
	}
	return nil
}

func (c *embeddedCatalog) GetSpecies(_ context.Context, id string) (*Species, error) {
	if species, ok := c.species[saga.CanonicalKey(id)]; ok {
		return species, nil
	}
	return nil, errors.NotFoundf("unknown species %q", id)
}

func (c *embeddedCatalog) GetBackground(_ context.Context, id string) (*Background, error) {
	if background, ok := c.backgrounds[saga.CanonicalKey(id)]; ok {
		return background, nil
	}
	return nil, errors.NotFoundf("unknown background %q", id)
}

func (c *embeddedCatalog) GetClass(_ context.Context, id string) (*Class, error) {
	if class, ok := c.classes[saga.CanonicalKey(id)]; ok {
		return class, nil
	}
	return nil, errors.NotFoundf("unknown class %q", id)
}

func (c *embeddedCatalog) GetFeat(_ context.Context, id string) (*Feat, error) {
	if feat, ok := c.feats[saga.CanonicalKey(id)]; ok {
		return feat, nil
	}
	return nil, errors.NotFoundf("unknown feat %q", id)
}

func (c *embeddedCatalog) GetTalent(_ context.Context, id string) (*Talent, error) {
	if talent, ok := c.talents[saga.CanonicalKey(id)]; ok {
		return talent, nil
	}
	return nil, errors.NotFoundf("unknown talent %q", id)
}

func (c *embeddedCatalog) GetSkill(_ context.Context, id string) (*Skill, error) {
	if skill, ok := c.skills[saga.CanonicalKey(id)]; ok {
		return skill, nil
	}
	return nil, errors.NotFoundf("unknown skill %q", id)
}

func (c *embeddedCatalog) ListSkills(_ context.Context) ([]*Skill, error) {
	return append([]*Skill(nil), c.skillList...), nil
}
