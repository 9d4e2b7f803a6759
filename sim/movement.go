package sim

var (
	basisForward = V(0, 0, -1)
	basisRight   = V(1, 0, 0)
)

// Kinematics 移动速度（单位/秒）与冲刺倍率
type Kinematics struct {
	Speed            float64
	SprintMultiplier float64
}

// ComputeDisplacement 根据输入与朝向计算新位置，只改变水平分量。
// 斜向按键先叠加再归一化，因此速度与单方向一致。
func ComputeDisplacement(k Kinematics, position, rotation Vec3, in InputSnapshot, dt float64) Vec3 {
	if !in.Moving() {
		return position
	}
	speed := k.Speed
	if in.Sprint {
		speed *= k.SprintMultiplier
	}

	yaw := rotation.Y()
	forward := RotateYaw(basisForward, yaw)
	right := RotateYaw(basisRight, yaw)

	var dir Vec3
	if in.Forward {
		dir = Add(dir, forward)
	}
	if in.Backward {
		dir = dir.Sub(forward)
	}
	if in.Right {
		dir = Add(dir, right)
	}
	if in.Left {
		dir = dir.Sub(right)
	}
	dir[1] = 0

	step := Scale(Normalize(dir), speed*dt)
	return V(position.X()+step.X(), position.Y(), position.Z()+step.Z())
}
