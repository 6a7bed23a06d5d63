package appstate

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/pairlabel/internal/canvas"
	"github.com/example/pairlabel/internal/crspdcfile"
	"github.com/example/pairlabel/internal/imagefile"
	"github.com/example/pairlabel/internal/labelfile"
	"github.com/example/pairlabel/internal/match"
	"github.com/example/pairlabel/internal/shape"
)

// ErrCancelled is returned when the user backs out of a prompt.
var ErrCancelled = errors.New("cancelled")

// LoadFile opens an image or label file on canvas i. An image whose sibling
// label file exists opens the label file instead. On failure the canvas is
// left as it was.
func (a *AppState) LoadFile(i int, path string) error {
	c, err := a.canvasAt(i)
	if err != nil {
		return err
	}
	if path == "" {
		p, ok := a.chooser.ChooseFile("Open image or label file", a.docs[i].source)
		if !ok {
			return ErrCancelled
		}
		path = p
	}
	if a.dirty && !a.confirmer.Confirm("Discard unsaved changes?") {
		return ErrCancelled
	}
	if !labelfile.IsLabelFile(path) {
		if sibling := labelfile.PathFor(path); fileExists(sibling) {
			path = sibling
		}
	}

	var (
		img    *imagefile.Image
		shapes []*shape.Shape
		doc    = document{source: path}
	)
	if labelfile.IsLabelFile(path) {
		lf, err := labelfile.Load(path)
		if err != nil {
			return err
		}
		img, err = imagefile.Decode(lf.ImageData)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		img.Path = resolve(path, lf.ImagePath)
		shapes = lf.Shapes
		doc.labelPath = path
		doc.imagePath = img.Path
		if lf.LineColor.A != 0 {
			a.LineColor = lf.LineColor
		}
		if lf.FillColor.A != 0 {
			a.FillColor = lf.FillColor
		}
	} else {
		img, err = imagefile.Read(path)
		if err != nil {
			return err
		}
		doc.labelPath = labelfile.PathFor(path)
		doc.imagePath = path
	}

	a.SetMode(canvas.ModeEdit)
	c.Reset()
	a.rows[i] = make(map[string]int)
	c.LoadImage(img)
	c.LoadShapes(shapes)
	a.docs[i] = doc
	a.pruneMatches()
	if a.notifier != nil {
		a.notifier.Load(path)
	}
	if a.bothLoaded() {
		if err := a.LoadCorrespondences(); err != nil {
			log.Printf("correspondences: %v", err)
		}
	}
	return nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// resolve interprets an image path stored in a label file relative to that
// label file.
func resolve(labelPath, imagePath string) string {
	if imagePath == "" || filepath.IsAbs(imagePath) {
		return imagePath
	}
	return filepath.Join(filepath.Dir(labelPath), imagePath)
}

// relativeTo is the inverse of resolve. Both paths are made absolute first
// so a working-directory relative image survives a label file saved
// elsewhere. The absolute image path is kept when no relative path exists.
func relativeTo(labelPath, imagePath string) string {
	if imagePath == "" {
		return ""
	}
	img, err := filepath.Abs(imagePath)
	if err != nil {
		return imagePath
	}
	dir, err := filepath.Abs(filepath.Dir(labelPath))
	if err != nil {
		return img
	}
	rel, err := filepath.Rel(dir, img)
	if err != nil {
		return img
	}
	return rel
}

func (a *AppState) bothLoaded() bool {
	for _, c := range a.Canvases {
		if c.Image == nil {
			return false
		}
	}
	return true
}

// pruneMatches drops names that no longer resolve on both canvases.
func (a *AppState) pruneMatches() {
	for _, name := range a.Matches.Names() {
		_, _, okA := a.Canvases[0].FindEdgeByName(name)
		_, _, okB := a.Canvases[1].FindEdgeByName(name)
		if !okA || !okB {
			_ = a.Matches.Remove(name)
		}
	}
}

// CorrespondencePath returns the correspondence file for the loaded pair, or
// "" when either canvas has no image.
func (a *AppState) CorrespondencePath() string {
	if !a.bothLoaded() {
		return ""
	}
	return crspdcfile.PathFromNames([2]string{a.docs[0].imagePath, a.docs[1].imagePath})
}

// LoadCorrespondences restores the correspondence file of the loaded pair.
// A missing file is not an error.
func (a *AppState) LoadCorrespondences() error {
	path := a.CorrespondencePath()
	if path == "" || !fileExists(path) {
		return nil
	}
	f, err := crspdcfile.Load(path)
	if err != nil {
		return err
	}
	if dropped := a.Matches.Restore(f.ByName, f.ByID); len(dropped) > 0 {
		log.Printf("%s: dropped unresolved correspondences %v", path, dropped)
	}
	if a.notifier != nil {
		a.notifier.Load(path)
	}
	return nil
}

// FinishShape closes the shape being drawn on canvas i and asks for its
// label. Cancelling reopens the shape for more points. The canvases return to
// edit mode unless the other one is still drawing.
func (a *AppState) FinishShape(i int) (*shape.Shape, error) {
	c, err := a.canvasAt(i)
	if err != nil {
		return nil, err
	}
	if _, err := c.CloseShape(); err != nil {
		return nil, err
	}
	text, ok := a.prompter.PromptLabel("")
	text = strings.TrimSpace(text)
	if !ok || text == "" {
		if _, err := c.RetractLast(); err != nil {
			return nil, err
		}
		return nil, ErrCancelled
	}
	s, err := c.SetLastLabel(text)
	if err != nil {
		return nil, err
	}
	if !a.drawingElsewhere(i) {
		a.SetMode(canvas.ModeEdit)
	}
	return s, nil
}

// drawingElsewhere reports whether a canvas other than i has a shape in
// progress.
func (a *AppState) drawingElsewhere(i int) bool {
	for j, c := range a.Canvases {
		if j != i && c.Drawing() {
			return true
		}
	}
	return false
}

func (a *AppState) selected(i int, op string) (*canvas.Canvas, *shape.Shape, error) {
	c, err := a.canvasAt(i)
	if err != nil {
		return nil, nil, err
	}
	s := c.Selection().Shape
	if s == nil {
		return nil, nil, fmt.Errorf("%s: no shape selected on canvas %d: %w", op, i, canvas.ErrInvalidOperation)
	}
	return c, s, nil
}

// EditLabel prompts for a new label for the selected shape on canvas i.
func (a *AppState) EditLabel(i int) error {
	_, s, err := a.selected(i, "edit label")
	if err != nil {
		return err
	}
	text, ok := a.prompter.PromptLabel(s.Label)
	text = strings.TrimSpace(text)
	if !ok || text == "" {
		return ErrCancelled
	}
	if text != s.Label {
		s.Label = text
		a.dirty = true
	}
	return nil
}

// SetShapeColors picks override colors for the selected shape on canvas i.
func (a *AppState) SetShapeColors(i int) error {
	_, s, err := a.selected(i, "shape colors")
	if err != nil {
		return err
	}
	line, ok := a.picker.PickColor(a.LineColorOf(s), a.LineColor, "Choose line color")
	if !ok {
		return ErrCancelled
	}
	fill, ok := a.picker.PickColor(a.FillColorOf(s), a.FillColor, "Choose fill color")
	if !ok {
		return ErrCancelled
	}
	s.LineColor, s.FillColor = &line, &fill
	a.dirty = true
	return nil
}

// ChooseDefaultColors picks new document default colors. Shapes without an
// override follow the new defaults.
func (a *AppState) ChooseDefaultColors() error {
	line, ok := a.picker.PickColor(a.LineColor, DefaultLineColor, "Choose line color")
	if !ok {
		return ErrCancelled
	}
	fill, ok := a.picker.PickColor(a.FillColor, DefaultFillColor, "Choose fill color")
	if !ok {
		return ErrCancelled
	}
	a.LineColor, a.FillColor = line, fill
	a.dirty = true
	return nil
}

// DeleteSelected removes the selected shape on canvas i after confirmation.
func (a *AppState) DeleteSelected(i int) (*shape.Shape, error) {
	c, s, err := a.selected(i, "delete")
	if err != nil {
		return nil, err
	}
	if !a.confirmer.Confirm(fmt.Sprintf("Delete shape %q?", s.Label)) {
		return nil, ErrCancelled
	}
	return c.DeleteSelected()
}

// DuplicateSelected copies the selected shape on canvas i.
func (a *AppState) DuplicateSelected(i int) (*shape.Shape, error) {
	c, err := a.canvasAt(i)
	if err != nil {
		return nil, err
	}
	return c.DuplicateSelected()
}

// CreateCorrespondence prompts for a name and links the edges selected on
// both canvases. A duplicate name is logged and leaves everything unchanged.
func (a *AppState) CreateCorrespondence() (string, error) {
	if !a.Matches.Ready() {
		return "", fmt.Errorf("create correspondence: %w", match.ErrNoEdge)
	}
	name, ok := a.prompter.PromptLabel("")
	if !ok {
		return "", ErrCancelled
	}
	name = strings.TrimSpace(name)
	if err := a.Matches.Create(name); err != nil {
		if errors.Is(err, match.ErrDuplicateName) {
			log.Printf("correspondence %q ignored: %v", name, err)
		}
		return "", err
	}
	a.dirty = true
	return name, nil
}

// RemoveCorrespondence deletes the named correspondence.
func (a *AppState) RemoveCorrespondence(name string) error {
	if err := a.Matches.Remove(name); err != nil {
		return err
	}
	a.dirty = true
	return nil
}

// SelectCorrespondence highlights the named edges on both canvases.
func (a *AppState) SelectCorrespondence(name string) error {
	return a.Matches.SelectByName(name)
}

// LabelFile snapshots canvas i as a label document.
func (a *AppState) LabelFile(i int) (*labelfile.File, error) {
	c, err := a.canvasAt(i)
	if err != nil {
		return nil, err
	}
	if c.Image == nil {
		return nil, fmt.Errorf("canvas %d has no image: %w", i, canvas.ErrInvalidOperation)
	}
	path := a.savePath(i)
	return &labelfile.File{
		Path:      path,
		ImagePath: relativeTo(path, c.Image.Path),
		ImageData: c.Image.Data,
		LineColor: a.LineColor,
		FillColor: a.FillColor,
		Shapes:    c.Shapes(),
	}, nil
}

func (a *AppState) savePath(i int) string {
	if i == 0 && a.Output != "" {
		return a.Output
	}
	return a.docs[i].labelPath
}

func (a *AppState) saveCanvas(i int, path string) error {
	f, err := a.LabelFile(i)
	if err != nil {
		return err
	}
	f.ImagePath = relativeTo(path, a.Canvases[i].Image.Path)
	if err := labelfile.Save(path, f); err != nil {
		return err
	}
	a.docs[i].labelPath = path
	if a.notifier != nil {
		a.notifier.Save(path)
	}
	return nil
}

// Save writes a label file for every canvas that has shapes, then the
// correspondence file when both canvases hold an image. It returns the
// written paths.
func (a *AppState) Save() ([]string, error) {
	var written []string
	for i, c := range a.Canvases {
		if c.Image == nil || c.Len() == 0 {
			continue
		}
		path := a.savePath(i)
		if err := a.saveCanvas(i, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if a.bothLoaded() {
		path, err := crspdcfile.Save(a.Matches.Names(),
			[2][]*shape.Shape{a.Canvases[0].Shapes(), a.Canvases[1].Shapes()},
			[2]string{a.docs[0].imagePath, a.docs[1].imagePath})
		if err != nil {
			return written, err
		}
		written = append(written, path)
		if a.notifier != nil {
			a.notifier.Save(path)
		}
	}
	a.dirty = false
	return written, nil
}

// SaveAs writes canvas i to path, asking for one when path is empty, and
// makes it the canvas's label file.
func (a *AppState) SaveAs(i int, path string) (string, error) {
	if _, err := a.canvasAt(i); err != nil {
		return "", err
	}
	if path == "" {
		p, ok := a.chooser.ChooseFile("Save label file", a.savePath(i))
		if !ok {
			return "", ErrCancelled
		}
		path = p
	}
	if filepath.Ext(path) == "" {
		path += labelfile.Suffix
	}
	if err := a.saveCanvas(i, path); err != nil {
		return "", err
	}
	if i == 0 {
		a.Output = ""
	}
	return path, nil
}

// Close discards both documents, asking first when there are unsaved changes.
func (a *AppState) Close() error {
	if a.dirty && !a.confirmer.Confirm("Discard unsaved changes?") {
		return ErrCancelled
	}
	a.SetMode(canvas.ModeEdit)
	for i, c := range a.Canvases {
		c.Reset()
		a.rows[i] = make(map[string]int)
		a.docs[i] = document{}
	}
	a.Matches.Reset()
	a.dirty = false
	return nil
}
