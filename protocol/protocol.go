package protocol

const (
	MsgRegister  = "register"
	MsgInput     = "input"
	MsgCastSpell = "cast_spell"
	MsgWelcome   = "welcome"
	MsgState     = "state"
)

// 编码方式：文本 JSON 或二进制 msgpack
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Vector 线上传输的三维向量
type Vector struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}
