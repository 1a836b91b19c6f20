package culling

import "github.com/go-gl/mathgl/mgl32"

// Frustum - шесть плоскостей (a,b,c,d). Точка внутри, если a*x+b*y+c*z+d >= 0.
// Нулевое значение не отсекает ничего. Тип сравним, смена пирамиды определяется через ==.
type Frustum [6]mgl32.Vec4

// Индексы плоскостей
const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

// FromMatrix извлекает плоскости из матрицы view-projection (метод Gribb-Hartmann).
// Плоскости нормализованы.
func FromMatrix(viewProj mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	f := Frustum{
		PlaneLeft:   r3.Add(r0),
		PlaneRight:  r3.Sub(r0),
		PlaneBottom: r3.Add(r1),
		PlaneTop:    r3.Sub(r1),
		PlaneNear:   r3.Add(r2),
		PlaneFar:    r3.Sub(r2),
	}
	for i := range f {
		if l := f[i].Vec3().Len(); l > 0 {
			f[i] = f[i].Mul(1 / l)
		}
	}
	return f
}

// FromCamera строит пирамиду по параметрам перспективной камеры
func FromCamera(eye, center mgl32.Vec3, fovy, aspect, near, far float32) Frustum {
	proj := mgl32.Perspective(mgl32.DegToRad(fovy), aspect, near, far)
	view := mgl32.LookAtV(eye, center, mgl32.Vec3{0, 1, 0})
	return FromMatrix(proj.Mul4(view))
}

// IsZero сообщает, что пирамида не задана
func (f Frustum) IsZero() bool {
	return f == Frustum{}
}

// IsVisible - консервативный тест: бокс невидим, только если все 8 вершин
// лежат с отрицательной стороны одной и той же плоскости.
func IsVisible(box AABB, f Frustum) bool {
	if f.IsZero() {
		return true
	}
	corners := box.Corners()
	for _, plane := range f {
		outside := true
		for _, c := range corners {
			if plane.Dot(c.Vec4(1)) >= 0 {
				outside = false
				break
			}
		}
		if outside {
			return false
		}
	}
	return true
}
