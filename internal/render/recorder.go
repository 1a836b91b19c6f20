package render

import "github.com/annel0/voxelstream/internal/world/mesh"

// Recorder - безголовый рендерер: запоминает загрузки и вызовы отрисовки.
// Не потокобезопасен, как и настоящий GPU-контекст.
type Recorder struct {
	next     Handle
	live     map[Handle]int
	uploads  int
	releases int
	draws    int
	frame    []Handle
}

// NewRecorder создаёт пустой Recorder
func NewRecorder() *Recorder {
	return &Recorder{live: make(map[Handle]int)}
}

func (r *Recorder) Upload(vertices []mesh.Vertex, indices []uint32) Handle {
	r.next++
	r.live[r.next] = len(indices)
	r.uploads++
	return r.next
}

func (r *Recorder) Draw(h Handle, tex Texture) {
	if _, ok := r.live[h]; !ok {
		panic("render: отрисовка освобождённого буфера")
	}
	r.draws++
	r.frame = append(r.frame, h)
}

func (r *Recorder) Release(h Handle) {
	if _, ok := r.live[h]; !ok {
		panic("render: повторное освобождение буфера")
	}
	delete(r.live, h)
	r.releases++
}

// EndFrame возвращает буферы, нарисованные с прошлого вызова
func (r *Recorder) EndFrame() []Handle {
	f := r.frame
	r.frame = nil
	return f
}

// Live возвращает число неосвобождённых буферов
func (r *Recorder) Live() int { return len(r.live) }

// Indices возвращает число индексов в буфере
func (r *Recorder) Indices(h Handle) (int, bool) {
	n, ok := r.live[h]
	return n, ok
}

func (r *Recorder) Uploads() int  { return r.uploads }
func (r *Recorder) Releases() int { return r.releases }
func (r *Recorder) Draws() int    { return r.draws }
