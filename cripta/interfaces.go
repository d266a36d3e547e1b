package cripta

type IKeySchedule interface {
	GenerateRoundKeys(masterKey []uint8) ([]uint32, error)
}

type IRoundFunction interface {
	Apply(half uint32, roundKey uint32) uint32
}

type ISymmetricCipher interface {
	SetKey(key []uint8) error
	EncryptBlock(plainBlock []uint8) ([]uint8, error)
	DecryptBlock(cipherBlock []uint8) ([]uint8, error)
}
