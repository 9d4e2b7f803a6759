package sim

import "github.com/go-gl/mathgl/mgl64"

// Epsilon 归一化时的最小模长，低于此值视为零向量
const Epsilon = 0.01

// Vec3 三维向量（位置、旋转、方向共用）
type Vec3 = mgl64.Vec3

// V 构造向量
func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func Add(a, b Vec3) Vec3 { return a.Add(b) }

func Scale(v Vec3, s float64) Vec3 { return v.Mul(s) }

func Magnitude(v Vec3) float64 { return v.Len() }

// Distance 两点欧氏距离
func Distance(a, b Vec3) float64 { return a.Sub(b).Len() }

// Normalize 单位化；模长不超过 Epsilon 时原样返回，避免除以极小值
func Normalize(v Vec3) Vec3 {
	mag := v.Len()
	if mag <= Epsilon {
		return v
	}
	return v.Mul(1 / mag)
}

// RotateYaw 绕竖直轴旋转：x' = x·cos + z·sin，z' = -x·sin + z·cos，Y 不变
func RotateYaw(v Vec3, yaw float64) Vec3 {
	return mgl64.Rotate3DY(yaw).Mul3x1(v)
}
