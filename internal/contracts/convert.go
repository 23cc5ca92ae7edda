package contracts

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asAddresses(value interface{}) ([]common.Address, error) {
	v, ok := value.([]common.Address)
	if !ok {
		return nil, fmt.Errorf("unsupported address list type %T", value)
	}
	return v, nil
}

func asHashes(value interface{}) ([][32]byte, error) {
	v, ok := value.([][32]byte)
	if !ok {
		return nil, fmt.Errorf("unsupported bytes32 list type %T", value)
	}
	return v, nil
}

func asBool(value interface{}) (bool, error) {
	v, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("unsupported bool type %T", value)
	}
	return v, nil
}

func asString(value interface{}) (string, error) {
	v, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unsupported string type %T", value)
	}
	return v, nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		if !v.IsUint64() || v.Uint64() > 255 {
			return 0, fmt.Errorf("uint8 overflow: %s", v)
		}
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}
