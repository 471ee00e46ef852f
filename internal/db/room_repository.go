package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrRoomNotFound = errors.New("房间不存在")
	ErrRoomOccupied = errors.New("房间已被占用")
	ErrRoomVacant   = errors.New("房间当前无人入住")
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(conn *gorm.DB) *RoomRepository {
	return &RoomRepository{db: conn}
}

// GetByID 通过房间号获取房间信息
func (r *RoomRepository) GetByID(roomID string) (*RoomInfo, error) {
	var room RoomInfo
	err := r.db.Where("room_id = ?", roomID).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
		}
		return nil, fmt.Errorf("查询房间 %s 失败: %v", roomID, err)
	}
	return &room, nil
}

// ListAll 全部房间，按房间号排序
func (r *RoomRepository) ListAll() ([]RoomInfo, error) {
	var rooms []RoomInfo
	err := r.db.Order("room_id ASC").Find(&rooms).Error
	return rooms, err
}

// ListAvailable 全部空闲房间
func (r *RoomRepository) ListAvailable() ([]RoomInfo, error) {
	var rooms []RoomInfo
	err := r.db.Where("status = ?", RoomAvailable).Order("room_id ASC").Find(&rooms).Error
	return rooms, err
}

// CheckIn 占用房间并登记住客。用状态条件做并发保护，
// 房间不空闲时一行都不会更新
func (r *RoomRepository) CheckIn(roomID, name, idCard, phone string, at time.Time) error {
	result := r.db.Model(&RoomInfo{}).
		Where("room_id = ? AND status = ?", roomID, RoomAvailable).
		Updates(map[string]interface{}{
			"status":        RoomOccupied,
			"guest_name":    name,
			"guest_id_card": idCard,
			"guest_phone":   phone,
			"checkin_time":  at,
		})
	if result.Error != nil {
		return fmt.Errorf("办理入住失败: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(roomID); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrRoomOccupied, roomID)
	}
	return nil
}

// CheckOut 释放房间：清空住客信息并把空调镜像归零
func (r *RoomRepository) CheckOut(roomID string) error {
	result := r.db.Model(&RoomInfo{}).
		Where("room_id = ? AND status = ?", roomID, RoomOccupied).
		Updates(map[string]interface{}{
			"status":        RoomAvailable,
			"guest_name":    "",
			"guest_id_card": "",
			"guest_phone":   "",
			"checkin_time":  nil,
			"ac_phase":      "off",
			"ac_is_on":      false,
			"ac_fan_speed":  "",
			"ac_energy":     0,
			"ac_cost":       0,
		})
	if result.Error != nil {
		return fmt.Errorf("办理退房失败: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(roomID); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrRoomVacant, roomID)
	}
	return nil
}

// UpdateACMirror 刷新房间表里的空调状态镜像
func (r *RoomRepository) UpdateACMirror(roomID, phase string, isOn bool, mode, fan string, current, target, energy, cost float64) error {
	return r.db.Model(&RoomInfo{}).Where("room_id = ?", roomID).Updates(map[string]interface{}{
		"ac_phase":     phase,
		"ac_is_on":     isOn,
		"ac_mode":      mode,
		"ac_fan_speed": fan,
		"current_temp": current,
		"target_temp":  target,
		"ac_energy":    energy,
		"ac_cost":      cost,
	}).Error
}
