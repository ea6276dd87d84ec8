package levelfile

import (
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/pixelplumber/plumber/level"
	"github.com/pixelplumber/plumber/models"
)

// FromLevel captures the tiles, actors and controllables of l. Dead
// actors are not saved.
func FromLevel(l *level.Level) *File {
	f := &File{
		Width:  l.Width(),
		Height: l.Height(),
		Tiles:  append([]models.Tile(nil), l.Tiles()...),
	}

	for _, p := range l.Players() {
		f.Entities = append(f.Entities, Entity{
			Kind:     p.Kind(),
			Position: p.GetBody().Position,
		})
	}

	for _, e := range l.Entities() {
		if !e.GetBody().Alive {
			continue
		}

		rec := Entity{Kind: e.Kind(), Position: e.GetBody().Position}
		if k, ok := e.(*models.Koopa); ok {
			if k.Green {
				rec.Flags |= FlagGreen
			}
			if k.Winged {
				rec.Flags |= FlagWinged
			}
		}
		f.Entities = append(f.Entities, rec)
	}
	return f
}

// Apply resets l and fills it with the content of f. Entities of an
// unknown kind are skipped.
func (f *File) Apply(l *level.Level) error {
	l.Reset()
	l.Resize(f.Width, f.Height)

	for i, t := range f.Tiles {
		if err := l.AddTile(t, i%f.Width, i/f.Width); err != nil {
			return err
		}
	}

	for _, e := range f.Entities {
		if e.Kind == models.KindPlayer {
			l.AddPlayer(models.NewPlayer(e.Position))
			continue
		}

		a, ok := Spawn(e)
		if !ok {
			logs.Warn(errors.New("skipping entity of unsupported kind").
				WithTag("kind", e.Kind.String()).
				WithTag("position", e.Position))
			continue
		}
		l.AddEntity(a)
	}

	l.BuildColliders()
	return nil
}

// Spawn creates the actor described by e.
func Spawn(e Entity) (models.Actor, bool) {
	green := e.Flags&FlagGreen != 0
	winged := e.Flags&FlagWinged != 0

	switch e.Kind {
	case models.KindGoomba:
		return models.NewGoomba(e.Position), true

	case models.KindKoopa, models.KindRedKoopa, models.KindGreenKoopa:
		return models.NewKoopa(e.Position, green || e.Kind == models.KindGreenKoopa, winged), true

	case models.KindRedParakoopa, models.KindGreenParakoopa:
		return models.NewKoopa(e.Position, green || e.Kind == models.KindGreenParakoopa, true), true

	default:
		return nil, false
	}
}

// Load reads the level file at path into l.
func Load(path string, l *level.Level) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.New("opening level file failed").
			WithTag("path", path).
			Wrap(err)
	}
	defer file.Close()

	f, err := Decode(file)
	if err != nil {
		return errors.New("loading level file failed").
			WithTag("path", path).
			Wrap(err)
	}

	if err := f.Apply(l); err != nil {
		return err
	}

	logs.WithTag("path", path).
		WithTag("width", f.Width).
		WithTag("height", f.Height).
		WithTag("entities", len(f.Entities)).
		Info("level file loaded")
	return nil
}

// Save writes l to a level file at path.
func Save(path string, l *level.Level) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.New("creating level file failed").
			WithTag("path", path).
			Wrap(err)
	}
	defer file.Close()

	if err := Encode(file, FromLevel(l)); err != nil {
		return err
	}
	return file.Close()
}
