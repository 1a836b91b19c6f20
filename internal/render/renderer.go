// Package render описывает рендерер, которому мир передаёт готовую геометрию.
package render

import "github.com/annel0/voxelstream/internal/world/mesh"

// Handle - непрозрачный идентификатор загруженного буфера
type Handle uint32

// Texture - идентификатор текстуры атласа
type Texture uint32

// Renderer владеет GPU-ресурсами. Все методы вызываются только из потока,
// владеющего контекстом рендера.
type Renderer interface {
	Upload(vertices []mesh.Vertex, indices []uint32) Handle
	Draw(h Handle, tex Texture)
	Release(h Handle)
}
